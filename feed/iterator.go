package feed

import (
	"context"

	"github.com/poiesic/recordfeed/config"
)

// Iterator is a pull API over a built pipeline. It owns the dataset
// lifecycle: closing the iterator closes the dataset.
type Iterator struct {
	dataset *Dataset
	closed  bool
}

// NewIterator builds the configured pipeline and returns an iterator over
// its batches.
func NewIterator(cfg *config.InputReader, opts ...Option) (*Iterator, error) {
	dataset, err := Build(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Iterator{dataset: dataset}, nil
}

// Next returns the next batch. io.EOF signals the end of the configured
// epochs; any other error is the pipeline's first failure.
func (it *Iterator) Next(ctx context.Context) (*Batch, error) {
	if it.closed {
		return nil, ErrClosed
	}
	return it.dataset.NextBatch(ctx)
}

// Reset restarts iteration from the beginning of the input.
func (it *Iterator) Reset() {
	if it.closed {
		return
	}
	it.dataset.Reset()
}

// Close stops the pipeline and releases its resources.
func (it *Iterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.dataset.Close()
}
