package feed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/recordfeed/core"
	"github.com/poiesic/recordfeed/recordio"
	badgerstore "github.com/poiesic/recordfeed/store/badger"
	"github.com/stretchr/testify/require"
)

// testExample builds a small valid example. n is folded into the source id
// and the first pixel so records are tellable apart.
func testExample(n int) *core.Example {
	image := make([]float32, 2*2*3)
	image[0] = float32(n)
	return &core.Example{
		SourceId: fmt.Sprintf("frame-%03d", n),
		Image:    image,
		Height:   2,
		Width:    2,
		Channels: 3,
		Recorded: time.Now().UTC().Add(-time.Hour),
	}
}

// labeledExample is testExample with one box and class annotation.
func labeledExample(n int, class string) *core.Example {
	example := testExample(n)
	example.Boxes = []core.Box{{YMin: 0.1, XMin: 0.1, YMax: 0.5, XMax: 0.5}}
	example.Classes = []string{class}
	return example
}

// writeRecordFile writes examples to one record file and returns its path.
func writeRecordFile(t *testing.T, dir, name string, examples ...*core.Example) string {
	t.Helper()
	path := filepath.Join(dir, name)
	writer, err := recordio.Create(path)
	require.NoError(t, err)
	for _, example := range examples {
		require.NoError(t, writer.Append(example))
	}
	require.NoError(t, writer.Close())
	return path
}

// seedStore fills a badger record store at path with n examples.
func seedStore(t *testing.T, path string, n int) {
	t.Helper()
	rs, err := badgerstore.Open(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, rs.Close()) }()

	ctx := context.Background()
	for i := 1; i <= n; i++ {
		example := testExample(i)
		example.Id = core.ID(i)
		_, err := rs.AddExamples(ctx, example)
		require.NoError(t, err)
	}
}

// corruptLastByte flips the final byte of a file, breaking the checksum of
// its last record.
func corruptLastByte(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o644))
}
