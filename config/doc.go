// Package config parses the declarative input reader configuration that
// drives a recordfeed pipeline.
//
// A configuration is a single HCL reader block naming a record source and
// tuning the shuffle, repeat, decode, batch and prefetch stages:
//
//	reader {
//	  record_files {
//	    patterns = ["data/train-*.rec"]
//	  }
//
//	  label_map   = "data/labels.hcl"
//	  shuffle     = true
//	  num_readers = 4
//	}
//
// Unset options fall back to package defaults; Load and Parse return fully
// defaulted, validated configurations.
package config
