package badger

import (
	"io"

	"github.com/dgraph-io/badger/v4"
)

// shardReader iterates one key-space shard over a long-lived read
// transaction. Records added after the reader is opened are not visible.
type shardReader struct {
	tx     *badger.Txn
	iter   *badger.Iterator
	index  uint64
	total  uint64
	closed bool
}

func newShardReader(db *badger.DB, index, total int) *shardReader {
	tx := db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(exampleRecordPrefix)
	iter := tx.NewIterator(opts)
	iter.Rewind()
	return &shardReader{
		tx:    tx,
		iter:  iter,
		index: uint64(index),
		total: uint64(total),
	}
}

// Next returns a copy of the next record in the shard, or io.EOF when the
// shard is exhausted.
func (r *shardReader) Next() ([]byte, error) {
	if r.closed {
		return nil, io.EOF
	}
	for ; r.iter.Valid(); r.iter.Next() {
		id := exampleIDFromKey(r.iter.Item().Key())
		if uint64(id)%r.total != r.index {
			continue
		}
		data, err := r.iter.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		r.iter.Next()
		return data, nil
	}
	return nil, io.EOF
}

func (r *shardReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.iter.Close()
	r.tx.Discard()
	return nil
}
