package feed

import "errors"

var (
	// ErrConfigRequired is returned when a nil configuration is supplied.
	ErrConfigRequired = errors.New("reader configuration is required")

	// ErrNoShards is returned when a source matches no input shards.
	ErrNoShards = errors.New("no input shards matched")

	// ErrUnsupportedSource is returned when the configuration names a
	// source kind the pipeline cannot build.
	ErrUnsupportedSource = errors.New("unsupported input source")

	// ErrEmptyBatch is returned when a batch is built from no examples.
	ErrEmptyBatch = errors.New("batch contains no examples")

	// ErrShapeMismatch is returned when examples with different image
	// shapes are batched together.
	ErrShapeMismatch = errors.New("examples in a batch must share an image shape")

	// ErrClosed is returned when a closed iterator is advanced.
	ErrClosed = errors.New("iterator is closed")
)
