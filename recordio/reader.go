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


package recordio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/poiesic/recordfeed/core"
)

const (
	// DefaultBufferSize is the read buffer used when none is configured.
	DefaultBufferSize = 8 * 1000 * 1000

	// DefaultMaxRecordSize bounds a single record so a corrupt length
	// prefix cannot trigger an enormous allocation.
	DefaultMaxRecordSize = 1 << 30
)

// ReaderOption configures a Reader.
type ReaderOption func(*readerOptions)

type readerOptions struct {
	bufferSize    int
	maxRecordSize int
}

// WithBufferSize sets the read buffer size in bytes.
func WithBufferSize(size int) ReaderOption {
	return func(o *readerOptions) {
		if size > 0 {
			o.bufferSize = size
		}
	}
}

// WithMaxRecordSize sets the largest acceptable record payload in bytes.
func WithMaxRecordSize(size int) ReaderOption {
	return func(o *readerOptions) {
		if size > 0 {
			o.maxRecordSize = size
		}
	}
}

// Reader reads framed records sequentially from an underlying stream.
// It is not safe for concurrent use.
type Reader struct {
	r      *bufio.Reader
	file   *os.File // nil when wrapping a caller-owned stream
	opts   readerOptions
	closed bool
}

// NewReader wraps an existing stream.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	options := readerOptions{
		bufferSize:    DefaultBufferSize,
		maxRecordSize: DefaultMaxRecordSize,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &Reader{r: bufio.NewReaderSize(r, options.bufferSize), opts: options}
}

// Open opens a record file at path for reading.
func Open(path string, opts ...ReaderOption) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	reader := NewReader(file, opts...)
	reader.file = file
	return reader, nil
}

// Next returns the payload of the next record. It returns io.EOF at a clean
// end of the stream and ErrCorrupt when the stream ends mid-record or a
// checksum does not match.
func (r *Reader) Next() ([]byte, error) {
	if r.closed {
		return nil, ErrClosed
	}

	length, err := binary.ReadUvarint(r.r)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: truncated length prefix: %w", ErrCorrupt, err)
	}
	if length > uint64(r.opts.maxRecordSize) {
		return nil, fmt.Errorf("%w: %d bytes", ErrRecordTooLarge, length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return nil, fmt.Errorf("%w: truncated payload: %w", ErrCorrupt, err)
	}

	var crcBuf [4]byte
	if _, err := io.ReadFull(r.r, crcBuf[:]); err != nil {
		return nil, fmt.Errorf("%w: truncated checksum: %w", ErrCorrupt, err)
	}
	want := binary.LittleEndian.Uint32(crcBuf[:])
	if got := crc32.Checksum(payload, castagnoli); got != want {
		return nil, fmt.Errorf("%w: checksum mismatch: got %08x, want %08x", ErrCorrupt, got, want)
	}

	return payload, nil
}

// NextExample reads and deserializes the next example record.
func (r *Reader) NextExample() (*core.Example, error) {
	payload, err := r.Next()
	if err != nil {
		return nil, err
	}
	return core.UnmarshalExample(payload)
}

// Close closes the file, if the reader owns one.
func (r *Reader) Close() error {
	if r.closed {
		return ErrClosed
	}
	r.closed = true
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
