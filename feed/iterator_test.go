package feed

import (
	"context"
	"io"
	"testing"

	"github.com/poiesic/recordfeed/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterator_PullsBatches(t *testing.T) {
	dir := t.TempDir()
	writeRecordFile(t, dir, "a.rec", testExample(1), testExample(2), testExample(3))

	cfg := streamConfig(t, []string{dir + "/*.rec"}, func(c *config.InputReader) {
		c.Shuffle = boolPtr(false)
		c.NumReaders = 1
	})

	it, err := NewIterator(cfg)
	require.NoError(t, err)
	defer it.Close()

	ctx := context.Background()
	count := 0
	for {
		_, err := it.Next(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 3, count)

	it.Reset()
	_, err = it.Next(ctx)
	require.NoError(t, err)
}

func TestIterator_NextAfterClose(t *testing.T) {
	dir := t.TempDir()
	writeRecordFile(t, dir, "a.rec", testExample(1))

	cfg := streamConfig(t, []string{dir + "/*.rec"}, nil)

	it, err := NewIterator(cfg)
	require.NoError(t, err)
	require.NoError(t, it.Close())
	require.NoError(t, it.Close())

	_, err = it.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
