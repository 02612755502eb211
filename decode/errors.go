package decode

import "errors"

var (
	// ErrConfigRequired is returned when a reader configuration is not provided.
	ErrConfigRequired = errors.New("reader configuration required")

	// ErrUndecodable indicates a record that cannot be deserialized.
	ErrUndecodable = errors.New("undecodable record")

	// ErrTrailingBytes indicates leftover bytes after a record payload.
	ErrTrailingBytes = errors.New("record payload has trailing bytes")

	// ErrNoLabelMap indicates class annotations without a configured label map.
	ErrNoLabelMap = errors.New("no label map configured")

	// ErrUnknownClass indicates a class name missing from the label map.
	ErrUnknownClass = errors.New("unknown class name")

	// ErrAdditionalChannels indicates an example whose extra channels do not
	// match the configured additional channel count.
	ErrAdditionalChannels = errors.New("additional channels mismatch")
)
