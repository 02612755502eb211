package badger

import (
	"encoding/binary"

	"github.com/poiesic/recordfeed/core"
)

// Key prefix for example records. The ID is appended in BigEndian order so
// lexicographic iteration visits examples in ID order.
const exampleRecordPrefix = "exrec:"

// makeExampleKey generates a key for an example record by ID.
func makeExampleKey(id core.ID) []byte {
	prefixBytes := []byte(exampleRecordPrefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// exampleIDFromKey recovers the ID from an example record key.
func exampleIDFromKey(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(exampleRecordPrefix):]))
}
