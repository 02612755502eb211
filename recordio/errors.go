package recordio

import "errors"

var (
	// ErrCorrupt indicates a damaged record file: a checksum mismatch, a
	// truncated record, or an implausible record length.
	ErrCorrupt = errors.New("corrupt record file")

	// ErrRecordTooLarge indicates a record length above the configured limit.
	ErrRecordTooLarge = errors.New("record exceeds maximum size")

	// ErrClosed indicates use of a closed reader or writer.
	ErrClosed = errors.New("record file is closed")
)
