// Package decode turns serialized records back into structured examples.
//
// A Decoder applies the record-shaping options from the reader
// configuration: it resolves class names to class ids through a label map
// (optionally by display name), keeps or drops instance masks, and enforces
// the configured number of additional image channels.
package decode
