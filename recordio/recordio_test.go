package recordio

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/recordfeed/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExample(source string) *core.Example {
	return &core.Example{
		SourceId: source,
		Image:    make([]float32, 2*2*3),
		Height:   2,
		Width:    2,
		Channels: 3,
		Boxes:    []core.Box{{YMin: 0, XMin: 0, YMax: 1, XMax: 1}},
		Classes:  []string{"person"},
		Recorded: time.Unix(1700000000, 0).UTC(),
	}
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "examples.rec")

	writer, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, writer.Append(testExample("a")))
	require.NoError(t, writer.Append(testExample("b")))
	assert.Equal(t, 2, writer.Count())
	require.NoError(t, writer.Close())

	reader, err := Open(path)
	require.NoError(t, err)
	defer reader.Close()

	first, err := reader.NextExample()
	require.NoError(t, err)
	assert.Equal(t, "a", first.SourceId)

	second, err := reader.NextExample()
	require.NoError(t, err)
	assert.Equal(t, "b", second.SourceId)

	_, err = reader.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_EmptyStream(t *testing.T) {
	reader := NewReader(bytes.NewReader(nil))
	_, err := reader.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_ChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)
	require.NoError(t, writer.AppendRaw([]byte("payload")))
	require.NoError(t, writer.Flush())

	data := buf.Bytes()
	data[2] ^= 0xff // flip a payload byte, checksum no longer matches

	reader := NewReader(bytes.NewReader(data))
	_, err := reader.Next()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestReader_TruncatedRecord(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)
	require.NoError(t, writer.AppendRaw([]byte("payload")))
	require.NoError(t, writer.Flush())

	data := buf.Bytes()[:buf.Len()-6]

	reader := NewReader(bytes.NewReader(data))
	_, err := reader.Next()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestReader_RecordTooLarge(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)
	require.NoError(t, writer.AppendRaw(make([]byte, 100)))
	require.NoError(t, writer.Flush())

	reader := NewReader(bytes.NewReader(buf.Bytes()), WithMaxRecordSize(10))
	_, err := reader.Next()
	assert.ErrorIs(t, err, ErrRecordTooLarge)
}

func TestWriter_UseAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "examples.rec")
	writer, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	assert.ErrorIs(t, writer.AppendRaw([]byte("x")), ErrClosed)
	assert.ErrorIs(t, writer.Close(), ErrClosed)
}

func TestReader_EmptyPayloadRecords(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)
	require.NoError(t, writer.AppendRaw(nil))
	require.NoError(t, writer.Flush())

	reader := NewReader(bytes.NewReader(buf.Bytes()))
	payload, err := reader.Next()
	require.NoError(t, err)
	assert.Empty(t, payload)
}
