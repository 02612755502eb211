package feed

import (
	"context"
	"io"
	"testing"

	"github.com/poiesic/recordfeed/config"
	"github.com/poiesic/recordfeed/core"
	badgerstore "github.com/poiesic/recordfeed/store/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource_GlobsSorted(t *testing.T) {
	dir := t.TempDir()
	writeRecordFile(t, dir, "b.rec", testExample(2))
	writeRecordFile(t, dir, "a.rec", testExample(1))
	writeRecordFile(t, dir, "c.rec", testExample(3))

	src := NewFileSource([]string{dir + "/*.rec"}, 0)
	shards, err := src.Shards(context.Background())
	require.NoError(t, err)
	require.Len(t, shards, 3)
	assert.Equal(t, dir+"/a.rec", shards[0].Name())
	assert.Equal(t, dir+"/b.rec", shards[1].Name())
	assert.Equal(t, dir+"/c.rec", shards[2].Name())
}

func TestFileSource_DuplicatePatternsCollapse(t *testing.T) {
	dir := t.TempDir()
	path := writeRecordFile(t, dir, "a.rec", testExample(1))

	src := NewFileSource([]string{dir + "/*.rec", path}, 0)
	shards, err := src.Shards(context.Background())
	require.NoError(t, err)
	assert.Len(t, shards, 1)
}

func TestFileSource_NoMatches(t *testing.T) {
	src := NewFileSource([]string{t.TempDir() + "/*.rec"}, 0)
	_, err := src.Shards(context.Background())
	assert.ErrorIs(t, err, ErrNoShards)
}

func TestFileShard_ReadsRecords(t *testing.T) {
	dir := t.TempDir()
	writeRecordFile(t, dir, "a.rec", testExample(1), testExample(2))

	src := NewFileSource([]string{dir + "/a.rec"}, 0)
	shards, err := src.Shards(context.Background())
	require.NoError(t, err)

	reader, err := shards[0].Open(context.Background())
	require.NoError(t, err)
	defer reader.Close()

	var count int
	for {
		_, err := reader.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 2, count)
}

func TestStoreSource_ShardsCoverStore(t *testing.T) {
	rs, err := badgerstore.OpenMemory()
	require.NoError(t, err)
	ctx := context.Background()

	for i := 1; i <= 9; i++ {
		example := testExample(i)
		example.Id = core.ID(i)
		_, err := rs.AddExamples(ctx, example)
		require.NoError(t, err)
	}

	src := NewStoreSource(rs, 4, true)
	defer src.Close()

	shards, err := src.Shards(ctx)
	require.NoError(t, err)
	require.Len(t, shards, 4)

	total := 0
	for _, shard := range shards {
		reader, err := shard.Open(ctx)
		require.NoError(t, err)
		for {
			_, err := reader.Next()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			total++
		}
		require.NoError(t, reader.Close())
	}
	assert.Equal(t, 9, total)
}

func TestNewSource_Unsupported(t *testing.T) {
	_, err := NewSource(&config.InputReader{})
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	_, err = NewSource(nil)
	assert.ErrorIs(t, err, ErrConfigRequired)
}
