package decode

import (
	"testing"
	"time"

	"github.com/poiesic/recordfeed/config"
	"github.com/poiesic/recordfeed/core"
	"github.com/poiesic/recordfeed/labelmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLabels(t *testing.T) *labelmap.Map {
	t.Helper()
	labels, err := labelmap.New([]*labelmap.Entry{
		{Name: "person", ID: 1, DisplayName: "Person"},
		{Name: "bicycle", ID: 2},
	})
	require.NoError(t, err)
	return labels
}

func testConfig(t *testing.T, mutate func(*config.InputReader)) *config.InputReader {
	t.Helper()
	cfg := &config.InputReader{
		RecordFiles: &config.RecordFilesSource{Patterns: []string{"*.rec"}},
	}
	cfg.ApplyDefaults()
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func testExample() *core.Example {
	return &core.Example{
		SourceId: "frame-001",
		Image:    make([]float32, 2*2*3),
		Height:   2,
		Width:    2,
		Channels: 3,
		Boxes:    []core.Box{{YMin: 0.1, XMin: 0.1, YMax: 0.9, XMax: 0.9}},
		Classes:  []string{"person"},
		Masks:    [][]float32{make([]float32, 4)},
		Recorded: time.Unix(1700000000, 0).UTC(),
	}
}

func TestDecode_ResolvesClasses(t *testing.T) {
	decoder, err := NewDecoder(testConfig(t, nil), WithLabelMap(testLabels(t)))
	require.NoError(t, err)

	got, err := decoder.Decode(core.MarshalExample(testExample()))
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, got.ClassIds)
	assert.Nil(t, got.Masks, "masks dropped unless load_masks is set")
}

func TestDecode_DisplayName(t *testing.T) {
	cfg := testConfig(t, func(c *config.InputReader) { c.UseDisplayName = true })
	decoder, err := NewDecoder(cfg, WithLabelMap(testLabels(t)))
	require.NoError(t, err)

	example := testExample()
	example.Classes = []string{"Person"}

	got, err := decoder.Decode(core.MarshalExample(example))
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, got.ClassIds)
}

func TestDecode_LoadMasks(t *testing.T) {
	cfg := testConfig(t, func(c *config.InputReader) { c.LoadMasks = true })
	decoder, err := NewDecoder(cfg, WithLabelMap(testLabels(t)))
	require.NoError(t, err)

	got, err := decoder.Decode(core.MarshalExample(testExample()))
	require.NoError(t, err)
	require.Len(t, got.Masks, 1)
}

func TestDecode_AdditionalChannels(t *testing.T) {
	cfg := testConfig(t, func(c *config.InputReader) { c.AdditionalChannels = 1 })
	decoder, err := NewDecoder(cfg, WithLabelMap(testLabels(t)))
	require.NoError(t, err)

	// Missing the extra plane.
	_, err = decoder.Decode(core.MarshalExample(testExample()))
	assert.ErrorIs(t, err, ErrAdditionalChannels)

	example := testExample()
	example.Extra = make([]float32, 4)
	got, err := decoder.Decode(core.MarshalExample(example))
	require.NoError(t, err)
	assert.Len(t, got.Extra, 4)
}

func TestDecode_UnknownClass(t *testing.T) {
	decoder, err := NewDecoder(testConfig(t, nil), WithLabelMap(testLabels(t)))
	require.NoError(t, err)

	example := testExample()
	example.Classes = []string{"unicorn"}

	_, err = decoder.Decode(core.MarshalExample(example))
	assert.ErrorIs(t, err, ErrUnknownClass)
}

func TestDecode_NoLabelMap(t *testing.T) {
	decoder, err := NewDecoder(testConfig(t, nil))
	require.NoError(t, err)

	_, err = decoder.Decode(core.MarshalExample(testExample()))
	assert.ErrorIs(t, err, ErrNoLabelMap)

	// Records without class annotations decode fine without a label map.
	example := testExample()
	example.Boxes = nil
	example.Classes = nil
	example.Masks = nil
	got, err := decoder.Decode(core.MarshalExample(example))
	require.NoError(t, err)
	assert.Empty(t, got.ClassIds)
}

func TestDecode_GarbageInput(t *testing.T) {
	decoder, err := NewDecoder(testConfig(t, nil))
	require.NoError(t, err)

	_, err = decoder.Decode([]byte{0xff, 0xff, 0xff})
	assert.ErrorIs(t, err, ErrUndecodable)
}

func TestDecode_TrailingBytes(t *testing.T) {
	decoder, err := NewDecoder(testConfig(t, nil), WithLabelMap(testLabels(t)))
	require.NoError(t, err)

	data := core.MarshalExample(testExample())
	data = append(data, 0x00)

	_, err = decoder.Decode(data)
	assert.ErrorIs(t, err, ErrTrailingBytes)
}

func TestNewDecoder_NilConfig(t *testing.T) {
	_, err := NewDecoder(nil)
	assert.ErrorIs(t, err, ErrConfigRequired)
}
