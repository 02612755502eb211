package badger

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/poiesic/recordfeed/core"
	"github.com/poiesic/recordfeed/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExample(sourceId string) *core.Example {
	return &core.Example{
		SourceId: sourceId,
		Image:    make([]float32, 4*4*3),
		Height:   4,
		Width:    4,
		Channels: 3,
		Boxes:    []core.Box{{YMin: 0.1, XMin: 0.1, YMax: 0.5, XMax: 0.5}},
		Classes:  []string{"person"},
		Recorded: time.Now().UTC().Add(-time.Hour),
	}
}

func openTestStore(t *testing.T) store.RecordStore {
	t.Helper()
	s, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddAndGetExample(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	added, err := s.AddExamples(ctx, testExample("frame-001"))
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.NotZero(t, added[0].Id, "content ID should be assigned")

	got, err := s.GetExample(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "frame-001", got.SourceId)
	assert.Equal(t, added[0].Image, got.Image)
	assert.Equal(t, added[0].Boxes, got.Boxes)
}

func TestAddExamplesKeepsExplicitID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	example := testExample("frame-002")
	example.Id = 42

	added, err := s.AddExamples(ctx, example)
	require.NoError(t, err)
	assert.Equal(t, core.ID(42), added[0].Id)

	got, err := s.GetExample(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "frame-002", got.SourceId)
}

func TestAddExamplesRejectsInvalid(t *testing.T) {
	s := openTestStore(t)

	example := testExample("frame-003")
	example.Image = nil

	_, err := s.AddExamples(context.Background(), example)
	assert.ErrorIs(t, err, core.ErrEmptyImage)
}

func TestGetExampleNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetExample(context.Background(), 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCountExamples(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	count, err := s.CountExamples(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	for i := 0; i < 5; i++ {
		example := testExample("frame")
		example.Id = core.ID(i + 1)
		_, err := s.AddExamples(ctx, example)
		require.NoError(t, err)
	}

	count, err = s.CountExamples(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestOpenShardPartitionsStore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	const total = 3
	want := map[core.ID]bool{}
	for i := 1; i <= 10; i++ {
		example := testExample("frame")
		example.Id = core.ID(i)
		_, err := s.AddExamples(ctx, example)
		require.NoError(t, err)
		want[core.ID(i)] = true
	}

	seen := map[core.ID]bool{}
	for index := 0; index < total; index++ {
		reader, err := s.OpenShard(ctx, index, total)
		require.NoError(t, err)

		for {
			data, err := reader.Next()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)

			example, err := core.UnmarshalExample(data)
			require.NoError(t, err)
			assert.EqualValues(t, index, uint64(example.Id)%total)
			assert.False(t, seen[example.Id], "example %d returned twice", example.Id)
			seen[example.Id] = true
		}
		require.NoError(t, reader.Close())
	}

	assert.Equal(t, want, seen)
}

func TestOpenShardInvalidArgs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.OpenShard(ctx, -1, 2)
	assert.ErrorIs(t, err, store.ErrInvalidShard)

	_, err = s.OpenShard(ctx, 2, 2)
	assert.ErrorIs(t, err, store.ErrInvalidShard)

	_, err = s.OpenShard(ctx, 0, 0)
	assert.ErrorIs(t, err, store.ErrInvalidShard)
}

func TestShardReaderClosedReturnsEOF(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.AddExamples(ctx, testExample("frame"))
	require.NoError(t, err)

	reader, err := s.OpenShard(ctx, 0, 1)
	require.NoError(t, err)
	require.NoError(t, reader.Close())

	_, err = reader.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir)
	require.NoError(t, err)
	added, err := s.AddExamples(ctx, testExample("frame-persist"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetExample(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "frame-persist", got.SourceId)
}
