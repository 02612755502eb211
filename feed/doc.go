// Package feed builds streaming input pipelines over stored training
// examples: shard enumeration, shuffling, epoch repetition, parallel
// interleaved reading, parallel decoding and fixed-size batching into
// tensors, with a configurable number of batches prefetched ahead of the
// consumer.
//
// The pipeline is described declaratively by a config.InputReader. Build
// turns a configuration into a Dataset implementing gomlx train.Dataset;
// NewIterator wraps a Dataset in a pull API.
package feed
