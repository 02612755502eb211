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
	"hash/crc32"
	"io"
	"os"

	"github.com/poiesic/recordfeed/core"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Writer appends framed records to an underlying stream.
// It is not safe for concurrent use.
type Writer struct {
	w      *bufio.Writer
	file   *os.File // nil when wrapping a caller-owned stream
	count  int
	closed bool
}

// NewWriter wraps an existing stream. The caller retains ownership of w and
// must call Flush before using the stream again.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Create creates or truncates a record file at path.
func Create(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Writer{w: bufio.NewWriter(file), file: file}, nil
}

// AppendRaw writes one record payload with framing.
func (w *Writer) AppendRaw(payload []byte) error {
	if w.closed {
		return ErrClosed
	}

	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(payload)))
	if _, err := w.w.Write(lenBuf[:n]); err != nil {
		return err
	}
	if _, err := w.w.Write(payload); err != nil {
		return err
	}

	var crcBuf [4]byte
	binary.LittleEndian.PutUint32(crcBuf[:], crc32.Checksum(payload, castagnoli))
	if _, err := w.w.Write(crcBuf[:]); err != nil {
		return err
	}

	w.count++
	return nil
}

// Append serializes an example and writes it as one record.
func (w *Writer) Append(example *core.Example) error {
	return w.AppendRaw(core.MarshalExample(example))
}

// Count returns the number of records written so far.
func (w *Writer) Count() int {
	return w.count
}

// Flush writes buffered data to the underlying stream.
func (w *Writer) Flush() error {
	if w.closed {
		return ErrClosed
	}
	return w.w.Flush()
}

// Close flushes buffered data and closes the file, if the writer owns one.
func (w *Writer) Close() error {
	if w.closed {
		return ErrClosed
	}
	w.closed = true

	if err := w.w.Flush(); err != nil {
		if w.file != nil {
			w.file.Close()
		}
		return err
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}
