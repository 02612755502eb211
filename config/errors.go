package config

import "errors"

var (
	// ErrNoReaderBlock indicates a config file without a reader block.
	ErrNoReaderBlock = errors.New("config has no reader block")

	// ErrNoSource indicates a reader without a record source.
	ErrNoSource = errors.New("reader must set record_files or record_store")

	// ErrMultipleSources indicates a reader with more than one record source.
	ErrMultipleSources = errors.New("reader cannot set both record_files and record_store")

	// ErrNoInputPaths indicates a source without input paths.
	ErrNoInputPaths = errors.New("at least one input path must be specified")

	// ErrInvalidOption indicates an out-of-range reader option.
	ErrInvalidOption = errors.New("invalid reader option")
)
