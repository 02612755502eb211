package store

import "errors"

var (
	// ErrNotFound indicates a requested example does not exist.
	ErrNotFound = errors.New("example not found")

	// ErrInvalidShard indicates an out-of-range shard index or total.
	ErrInvalidShard = errors.New("invalid shard")
)
