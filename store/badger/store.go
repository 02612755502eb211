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


package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recordfeed/core"
	"github.com/poiesic/recordfeed/store"
)

// Store implements store.RecordStore for BadgerDB.
type Store struct {
	backend *backend
}

var _ store.RecordStore = (*Store)(nil)

// Open opens a record store at path, creating it if necessary.
func Open(path string) (store.RecordStore, error) {
	backend, err := openBackend(path, false)
	if err != nil {
		return nil, err
	}
	return &Store{backend: backend}, nil
}

// OpenMemory opens an in-memory record store for testing.
func OpenMemory() (store.RecordStore, error) {
	backend, err := openBackend("", true)
	if err != nil {
		return nil, err
	}
	return &Store{backend: backend}, nil
}

// Close closes the backing database.
func (s *Store) Close() error {
	return s.backend.close()
}

// AddExamples validates and stores examples. Examples with Id 0 get a
// content-based ID. A re-added example overwrites the previous copy under
// the same ID.
func (s *Store) AddExamples(ctx context.Context, examples ...*core.Example) ([]*core.Example, error) {
	err := s.backend.withTx(func(tx *badger.Txn) error {
		for _, example := range examples {
			if example.Recorded.IsZero() {
				example.Recorded = time.Now().UTC()
			}
			if err := core.ValidateExample(example); err != nil {
				return err
			}
			if example.Id == 0 {
				example.Id = example.ContentID()
			}

			if err := tx.Set(makeExampleKey(example.Id), core.MarshalExample(example)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return examples, nil
}

// GetExample retrieves an example by ID.
func (s *Store) GetExample(ctx context.Context, id core.ID) (*core.Example, error) {
	var example *core.Example
	err := s.backend.withTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeExampleKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: id %d", store.ErrNotFound, id)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			example, err = core.UnmarshalExample(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return example, nil
}

// CountExamples returns the number of stored examples.
func (s *Store) CountExamples(ctx context.Context) (int, error) {
	count := 0
	err := s.backend.withTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(exampleRecordPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// OpenShard opens a reader over the examples whose ID modulo total equals
// index. Content-based IDs spread uniformly, so shards are close to equal
// in size.
func (s *Store) OpenShard(ctx context.Context, index, total int) (store.ShardReader, error) {
	if total < 1 || index < 0 || index >= total {
		return nil, fmt.Errorf("%w: index %d of %d", store.ErrInvalidShard, index, total)
	}
	return newShardReader(s.backend.db, index, total), nil
}
