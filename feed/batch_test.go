package feed

import (
	"testing"

	"github.com/poiesic/recordfeed/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBatch_PadsBoxes(t *testing.T) {
	a := labeledExample(1, "person")
	a.ClassIds = []int64{7}
	b := testExample(2) // no boxes
	c := labeledExample(3, "person")
	c.Boxes = append(c.Boxes, core.Box{YMin: 0.2, XMin: 0.2, YMax: 0.9, XMax: 0.9})
	c.Classes = append(c.Classes, "person")
	c.ClassIds = []int64{7, 7}

	batch, err := NewBatch([]*core.Example{a, b, c})
	require.NoError(t, err)

	assert.Equal(t, 3, batch.Size)
	assert.Equal(t, 2, batch.MaxBoxes)
	assert.Equal(t, []int32{1, 0, 2}, batch.numBoxes)

	// padded slots are zero
	assert.Equal(t, []int64{7, 0}, batch.classes[0:2])
	assert.Equal(t, []int64{0, 0}, batch.classes[2:4])
	assert.Equal(t, []int64{7, 7}, batch.classes[4:6])
	assert.Equal(t, []float32{0, 0, 0, 0}, batch.boxes[4:8], "first example's padded box slot")
	assert.Equal(t, []float32{0, 0, 0, 0}, batch.boxes[8:12], "second example's first box slot")

	assert.Equal(t, float32(0.1), batch.boxes[0], "ymin of first box")
}

func TestNewBatch_NoBoxesAnywhere(t *testing.T) {
	batch, err := NewBatch([]*core.Example{testExample(1), testExample(2)})
	require.NoError(t, err)
	assert.Equal(t, 1, batch.MaxBoxes)
	assert.Equal(t, []int32{0, 0}, batch.numBoxes)
}

func TestNewBatch_ShapeMismatch(t *testing.T) {
	a := testExample(1)
	b := testExample(2)
	b.Height = 4
	b.Image = make([]float32, 4*2*3)

	_, err := NewBatch([]*core.Example{a, b})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestNewBatch_Empty(t *testing.T) {
	_, err := NewBatch(nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestNewBatch_StacksImages(t *testing.T) {
	a := testExample(1)
	b := testExample(2)

	batch, err := NewBatch([]*core.Example{a, b})
	require.NoError(t, err)

	stride := 2 * 2 * 3
	assert.Equal(t, float32(1), batch.images[0])
	assert.Equal(t, float32(2), batch.images[stride])
}

func TestNewBatch_AppendsExtraChannels(t *testing.T) {
	a := testExample(1)
	a.Extra = make([]float32, 2*2) // one extra plane
	for i := range a.Extra {
		a.Extra[i] = float32(10 + i)
	}

	batch, err := NewBatch([]*core.Example{a})
	require.NoError(t, err)
	require.Equal(t, 4, batch.Channels)

	// pixel p carries its 3 base values then Extra[p]
	assert.Equal(t, float32(10), batch.images[3])
	assert.Equal(t, float32(11), batch.images[7])
	assert.Equal(t, float32(13), batch.images[15])
}

func TestNewBatch_ExtraChannelShapeMismatch(t *testing.T) {
	a := testExample(1)
	b := testExample(2)
	b.Extra = make([]float32, 2*2)

	_, err := NewBatch([]*core.Example{a, b})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestBatch_Tensors(t *testing.T) {
	a := labeledExample(1, "person")
	a.ClassIds = []int64{7}

	batch, err := NewBatch([]*core.Example{a})
	require.NoError(t, err)

	inputs := batch.Inputs()
	require.Len(t, inputs, 1)
	require.NotNil(t, inputs[0])

	labels := batch.Labels()
	require.Len(t, labels, 3)
	for _, label := range labels {
		require.NotNil(t, label)
	}
}
