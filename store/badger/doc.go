// Package badger implements the record store on BadgerDB. Examples are
// kept under keys ordered by ID, and shard readers filter the key space by
// ID modulo shard count so a store can feed the interleaved read stage
// like a set of record files.
package badger
