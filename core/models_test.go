package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent_Deterministic(t *testing.T) {
	id1 := IDFromContent([]byte("same content"))
	id2 := IDFromContent([]byte("same content"))
	id3 := IDFromContent([]byte("other content"))

	assert.Equal(t, id1, id2)
	assert.NotEqual(t, id1, id3)
	assert.NotZero(t, id1)
}

func TestContentID(t *testing.T) {
	a := validExample()
	b := validExample()
	assert.Equal(t, a.ContentID(), b.ContentID())

	b.Image[0] = 0.5
	assert.NotEqual(t, a.ContentID(), b.ContentID())

	c := validExample()
	c.SourceId = "frame-002"
	assert.NotEqual(t, a.ContentID(), c.ContentID())
}

func TestExampleRoundTrip(t *testing.T) {
	example := validExample()
	example.Id = 42
	example.Extra = make([]float32, 16*2)
	example.Masks = [][]float32{make([]float32, 16)}
	example.Masks[0][3] = 1
	example.Metadata = map[string]string{"camera": "left"}
	example.Recorded = time.Unix(1700000000, 123000).UTC()
	example.Image[7] = 0.25

	data := MarshalExample(example)
	got, err := UnmarshalExample(data)
	require.NoError(t, err)

	assert.Equal(t, example.Id, got.Id)
	assert.Equal(t, example.SourceId, got.SourceId)
	assert.Equal(t, example.Image, got.Image)
	assert.Equal(t, example.Height, got.Height)
	assert.Equal(t, example.Width, got.Width)
	assert.Equal(t, example.Channels, got.Channels)
	assert.Equal(t, example.Extra, got.Extra)
	assert.Equal(t, example.Boxes, got.Boxes)
	assert.Equal(t, example.Classes, got.Classes)
	assert.Equal(t, example.Masks, got.Masks)
	assert.Equal(t, example.Metadata, got.Metadata)
	assert.True(t, example.Recorded.Equal(got.Recorded))
	assert.Empty(t, got.ClassIds, "ClassIds is not part of the wire format")
}

func TestExampleSkip(t *testing.T) {
	example := validExample()
	data := MarshalExample(example)

	n, err := ExampleMUS.Skip(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
}

func TestUnmarshalExample_Truncated(t *testing.T) {
	data := MarshalExample(validExample())
	_, err := UnmarshalExample(data[:len(data)/2])
	assert.Error(t, err)
}
