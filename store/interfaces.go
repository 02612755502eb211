package store

import (
	"context"

	"github.com/poiesic/recordfeed/core"
)

// ShardReader streams raw serialized records from one shard of a store.
// Next returns io.EOF when the shard is exhausted. Implementations are not
// safe for concurrent use; open one reader per goroutine.
type ShardReader interface {
	Next() ([]byte, error)
	Close() error
}

// RecordStore provides keyed storage of training examples with shard-aware
// iteration, so a store can feed the interleaved read stage the same way a
// set of record files does. Implementations must be thread-safe.
type RecordStore interface {
	// AddExamples validates and stores examples. Examples with Id 0 get a
	// content-based ID assigned. Returns the stored examples with IDs
	// populated.
	AddExamples(ctx context.Context, examples ...*core.Example) ([]*core.Example, error)

	// GetExample retrieves an example by ID.
	// Returns ErrNotFound if the example doesn't exist.
	GetExample(ctx context.Context, id core.ID) (*core.Example, error)

	// CountExamples returns the number of stored examples.
	CountExamples(ctx context.Context) (int, error)

	// OpenShard opens a reader over the examples whose IDs fall into
	// shard index of total equal key-space shards.
	OpenShard(ctx context.Context, index, total int) (ShardReader, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
