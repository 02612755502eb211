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


package feed

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/poiesic/recordfeed/config"
	"github.com/poiesic/recordfeed/recordio"
	"github.com/poiesic/recordfeed/store"
	badgerstore "github.com/poiesic/recordfeed/store/badger"
)

// RecordReader streams raw serialized records. Next returns io.EOF when
// the stream is exhausted.
type RecordReader interface {
	Next() ([]byte, error)
	Close() error
}

// Shard is one independently readable slice of a source. A shard may be
// opened multiple times, once per epoch.
type Shard interface {
	Name() string
	Open(ctx context.Context) (RecordReader, error)
}

// Source enumerates the shards of an input.
type Source interface {
	Shards(ctx context.Context) ([]Shard, error)
	Close() error
}

// NewSource builds the source the configuration describes: record files on
// disk or a badger record store.
func NewSource(cfg *config.InputReader) (Source, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	switch {
	case cfg.RecordFiles != nil:
		return NewFileSource(cfg.RecordFiles.Patterns, cfg.ReadBufferBytes), nil
	case cfg.RecordStore != nil:
		rs, err := badgerstore.Open(cfg.RecordStore.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open record store: %w", err)
		}
		return NewStoreSource(rs, cfg.RecordStore.Shards, true), nil
	default:
		return nil, ErrUnsupportedSource
	}
}

// FileSource reads shards from record files matched by glob patterns. Each
// matched file is one shard.
type FileSource struct {
	patterns    []string
	bufferBytes int
}

var _ Source = (*FileSource)(nil)

// NewFileSource creates a file source over glob patterns. bufferBytes sets
// the per-file read buffer; 0 uses the recordio default.
func NewFileSource(patterns []string, bufferBytes int) *FileSource {
	return &FileSource{patterns: patterns, bufferBytes: bufferBytes}
}

// Shards expands the glob patterns into one shard per matched file, in
// sorted path order. Duplicate matches across patterns are kept once.
func (s *FileSource) Shards(ctx context.Context) ([]Shard, error) {
	seen := map[string]bool{}
	var paths []string
	for _, pattern := range s.patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad input pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				paths = append(paths, match)
			}
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: patterns %v", ErrNoShards, s.patterns)
	}
	sort.Strings(paths)

	shards := make([]Shard, len(paths))
	for i, path := range paths {
		shards[i] = &fileShard{path: path, bufferBytes: s.bufferBytes}
	}
	return shards, nil
}

// Close is a no-op; file shards hold no shared resources.
func (s *FileSource) Close() error {
	return nil
}

type fileShard struct {
	path        string
	bufferBytes int
}

func (s *fileShard) Name() string {
	return s.path
}

func (s *fileShard) Open(ctx context.Context) (RecordReader, error) {
	var opts []recordio.ReaderOption
	if s.bufferBytes > 0 {
		opts = append(opts, recordio.WithBufferSize(s.bufferBytes))
	}
	return recordio.Open(s.path, opts...)
}

// StoreSource reads shards from a record store, splitting the key space
// into a fixed number of shards.
type StoreSource struct {
	store  store.RecordStore
	shards int
	owned  bool
}

var _ Source = (*StoreSource)(nil)

// NewStoreSource creates a source over an open record store split into the
// given number of key-space shards. When owned is true, closing the source
// closes the store.
func NewStoreSource(rs store.RecordStore, shards int, owned bool) *StoreSource {
	if shards < 1 {
		shards = 1
	}
	return &StoreSource{store: rs, shards: shards, owned: owned}
}

func (s *StoreSource) Shards(ctx context.Context) ([]Shard, error) {
	shards := make([]Shard, s.shards)
	for i := range shards {
		shards[i] = &storeShard{store: s.store, index: i, total: s.shards}
	}
	return shards, nil
}

func (s *StoreSource) Close() error {
	if !s.owned {
		return nil
	}
	return s.store.Close()
}

type storeShard struct {
	store store.RecordStore
	index int
	total int
}

func (s *storeShard) Name() string {
	return fmt.Sprintf("store-shard-%d-of-%d", s.index, s.total)
}

func (s *storeShard) Open(ctx context.Context) (RecordReader, error) {
	return s.store.OpenShard(ctx, s.index, s.total)
}
