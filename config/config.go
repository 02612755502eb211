// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Defaults applied to unset reader options.
const (
	DefaultNumReaders            = 8
	DefaultFilenameShuffleBuffer = 100
	DefaultShuffleBuffer         = 2048
	DefaultReadBlockLength       = 32
	DefaultSampleOneOfN          = 1
	DefaultNumParallelBatches    = 8
	DefaultNumParallelMapCalls   = 16
	DefaultPrefetchBatches       = 2
	DefaultReadBufferBytes       = 8 * 1000 * 1000
)

// RecordFilesSource configures reading from record files on disk.
type RecordFilesSource struct {
	// Patterns are glob patterns matching record files.
	Patterns []string `hcl:"patterns"`
}

// RecordStoreSource configures reading from a BadgerDB record store.
type RecordStoreSource struct {
	Path string `hcl:"path"`

	// Shards is the number of key-space shards the store is split into
	// for interleaved reading. Defaults to num_readers.
	Shards int `hcl:"shards,optional"`
}

// InputReader is the declarative description of an input pipeline: where
// records come from and how they are shuffled, repeated, decoded, batched
// and prefetched.
//
// Exactly one of RecordFiles or RecordStore must be set.
type InputReader struct {
	RecordFiles *RecordFilesSource `hcl:"record_files,block"`
	RecordStore *RecordStoreSource `hcl:"record_store,block"`

	// LabelMapPath points to the HCL label map used to resolve class
	// names to class ids. Optional; without it records must carry no
	// class annotations.
	LabelMapPath string `hcl:"label_map,optional"`

	// Shuffle enables filename- and record-level shuffling. Defaults to
	// true.
	Shuffle *bool `hcl:"shuffle,optional"`

	// NumReaders is the number of shards read in parallel. Clamped to the
	// number of available shards at build time.
	NumReaders int `hcl:"num_readers,optional"`

	// FilenameShuffleBuffer is the shuffle buffer size applied to the
	// shard order when Shuffle is enabled.
	FilenameShuffleBuffer int `hcl:"filename_shuffle_buffer,optional"`

	// ShuffleBuffer is the record-level shuffle buffer size applied after
	// interleaving when Shuffle is enabled.
	ShuffleBuffer int `hcl:"shuffle_buffer,optional"`

	// NumEpochs is how many times the input is repeated. 0 repeats
	// forever.
	NumEpochs int `hcl:"num_epochs,optional"`

	// ReadBlockLength is how many consecutive records are pulled from one
	// shard before the interleave moves to the next.
	ReadBlockLength int `hcl:"read_block_length,optional"`

	// SampleOneOfN keeps every nth record (starting with the first) when
	// greater than 1, e.g. to evaluate on a subset.
	SampleOneOfN int `hcl:"sample_one_of_n,optional"`

	// NumParallelBatches scales decode parallelism when batching: the
	// pipeline decodes batchSize*NumParallelBatches records in parallel.
	NumParallelBatches int `hcl:"num_parallel_batches,optional"`

	// NumParallelMapCalls is the decode parallelism when not batching.
	NumParallelMapCalls int `hcl:"num_parallel_map_calls,optional"`

	// PrefetchBatches is how many decoded batches are kept ready ahead of
	// the consumer.
	PrefetchBatches int `hcl:"prefetch_batches,optional"`

	// UseDisplayName resolves classes through label map display names.
	UseDisplayName bool `hcl:"use_display_name,optional"`

	// LoadMasks keeps instance masks on decoded examples.
	LoadMasks bool `hcl:"load_masks,optional"`

	// AdditionalChannels is the number of extra image channels every
	// record must carry beyond its base channels.
	AdditionalChannels int `hcl:"additional_channels,optional"`

	// ReadBufferBytes is the read buffer size for record files.
	ReadBufferBytes int `hcl:"read_buffer_bytes,optional"`
}

// hclConfigFile represents the top-level structure of a config file for
// decoding.
type hclConfigFile struct {
	Reader *InputReader `hcl:"reader,block"`
}

// Load parses an input reader configuration file, applies defaults and
// validates it.
func Load(path string) (*InputReader, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, diags)
	}
	return decode(file.Body, path)
}

// Parse parses input reader configuration source. The filename is used only
// in diagnostics.
func Parse(src []byte, filename string) (*InputReader, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config %s: %w", filename, diags)
	}
	return decode(file.Body, filename)
}

func decode(body hcl.Body, name string) (*InputReader, error) {
	var parsed hclConfigFile
	diags := gohcl.DecodeBody(body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config %s: %w", name, diags)
	}
	if parsed.Reader == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrNoReaderBlock)
	}

	cfg := parsed.Reader
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset options with their default values.
func (c *InputReader) ApplyDefaults() {
	if c.Shuffle == nil {
		enabled := true
		c.Shuffle = &enabled
	}
	if c.NumReaders == 0 {
		c.NumReaders = DefaultNumReaders
	}
	if c.FilenameShuffleBuffer == 0 {
		c.FilenameShuffleBuffer = DefaultFilenameShuffleBuffer
	}
	if c.ShuffleBuffer == 0 {
		c.ShuffleBuffer = DefaultShuffleBuffer
	}
	if c.ReadBlockLength == 0 {
		c.ReadBlockLength = DefaultReadBlockLength
	}
	if c.SampleOneOfN == 0 {
		c.SampleOneOfN = DefaultSampleOneOfN
	}
	if c.NumParallelBatches == 0 {
		c.NumParallelBatches = DefaultNumParallelBatches
	}
	if c.NumParallelMapCalls == 0 {
		c.NumParallelMapCalls = DefaultNumParallelMapCalls
	}
	if c.PrefetchBatches == 0 {
		c.PrefetchBatches = DefaultPrefetchBatches
	}
	if c.ReadBufferBytes == 0 {
		c.ReadBufferBytes = DefaultReadBufferBytes
	}
	if c.RecordStore != nil && c.RecordStore.Shards == 0 {
		c.RecordStore.Shards = c.NumReaders
	}
}

// Validate checks the configuration for contradictions and out-of-range
// options. It assumes defaults have been applied.
func (c *InputReader) Validate() error {
	if c.RecordFiles == nil && c.RecordStore == nil {
		return ErrNoSource
	}
	if c.RecordFiles != nil && c.RecordStore != nil {
		return ErrMultipleSources
	}

	if c.RecordFiles != nil {
		if len(c.RecordFiles.Patterns) == 0 {
			return ErrNoInputPaths
		}
		for _, pattern := range c.RecordFiles.Patterns {
			if pattern == "" {
				return fmt.Errorf("%w: empty pattern", ErrNoInputPaths)
			}
		}
	}
	if c.RecordStore != nil {
		if c.RecordStore.Path == "" {
			return fmt.Errorf("%w: record store path", ErrNoInputPaths)
		}
		if c.RecordStore.Shards < 1 {
			return fmt.Errorf("%w: shards must be positive, got %d",
				ErrInvalidOption, c.RecordStore.Shards)
		}
	}

	positive := []struct {
		name  string
		value int
	}{
		{"num_readers", c.NumReaders},
		{"filename_shuffle_buffer", c.FilenameShuffleBuffer},
		{"shuffle_buffer", c.ShuffleBuffer},
		{"read_block_length", c.ReadBlockLength},
		{"sample_one_of_n", c.SampleOneOfN},
		{"num_parallel_batches", c.NumParallelBatches},
		{"num_parallel_map_calls", c.NumParallelMapCalls},
		{"read_buffer_bytes", c.ReadBufferBytes},
	}
	for _, opt := range positive {
		if opt.value < 1 {
			return fmt.Errorf("%w: %s must be positive, got %d",
				ErrInvalidOption, opt.name, opt.value)
		}
	}

	if c.NumEpochs < 0 {
		return fmt.Errorf("%w: num_epochs cannot be negative, got %d",
			ErrInvalidOption, c.NumEpochs)
	}
	if c.PrefetchBatches < 0 {
		return fmt.Errorf("%w: prefetch_batches cannot be negative, got %d",
			ErrInvalidOption, c.PrefetchBatches)
	}
	if c.AdditionalChannels < 0 {
		return fmt.Errorf("%w: additional_channels cannot be negative, got %d",
			ErrInvalidOption, c.AdditionalChannels)
	}

	return nil
}

// ShuffleEnabled reports whether shuffling is on, treating an unset option
// as enabled.
func (c *InputReader) ShuffleEnabled() bool {
	return c.Shuffle == nil || *c.Shuffle
}
