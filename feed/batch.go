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


package feed

import (
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/poiesic/recordfeed/core"
)

// Batch is a fixed number of decoded examples flattened into contiguous
// buffers ready for tensor conversion. Images are stacked as
// [size, height, width, channels] with any extra channel planes appended
// to the channel dimension; boxes and classes are padded with zeros across
// the box dimension to the largest example in the batch, with NumBoxes
// recording each example's true count.
type Batch struct {
	Examples []*core.Example

	Size     int
	Height   int
	Width    int
	Channels int
	MaxBoxes int

	images   []float32
	boxes    []float32
	classes  []int64
	numBoxes []int32
}

// NewBatch stacks examples into a batch. Every example must share the same
// image shape, extra channels included.
func NewBatch(examples []*core.Example) (*Batch, error) {
	if len(examples) == 0 {
		return nil, ErrEmptyBatch
	}

	first := examples[0]
	channels := combinedChannels(first)
	maxBoxes := 0
	for _, example := range examples {
		if example.Height != first.Height || example.Width != first.Width ||
			combinedChannels(example) != channels {
			return nil, fmt.Errorf("%w: %dx%dx%d vs %dx%dx%d",
				ErrShapeMismatch,
				first.Height, first.Width, channels,
				example.Height, example.Width, combinedChannels(example))
		}
		if len(example.Boxes) > maxBoxes {
			maxBoxes = len(example.Boxes)
		}
	}
	// Zero box dimensions confuse shape inference downstream; pad to one
	// all-zero slot and let NumBoxes report the truth.
	if maxBoxes == 0 {
		maxBoxes = 1
	}

	b := &Batch{
		Examples: examples,
		Size:     len(examples),
		Height:   first.Height,
		Width:    first.Width,
		Channels: channels,
		MaxBoxes: maxBoxes,

		images:   make([]float32, len(examples)*first.Height*first.Width*channels),
		boxes:    make([]float32, len(examples)*maxBoxes*4),
		classes:  make([]int64, len(examples)*maxBoxes),
		numBoxes: make([]int32, len(examples)),
	}

	imageStride := b.Height * b.Width * b.Channels
	for i, example := range examples {
		stackImage(b.images[i*imageStride:(i+1)*imageStride], example)
		for j, box := range example.Boxes {
			offset := (i*maxBoxes + j) * 4
			b.boxes[offset+0] = box.YMin
			b.boxes[offset+1] = box.XMin
			b.boxes[offset+2] = box.YMax
			b.boxes[offset+3] = box.XMax
		}
		copy(b.classes[i*maxBoxes:], example.ClassIds)
		b.numBoxes[i] = int32(len(example.Boxes))
	}
	return b, nil
}

// combinedChannels is the image channel count with extra planes included.
func combinedChannels(example *core.Example) int {
	return example.Channels + len(example.Extra)/example.NumPixels()
}

// stackImage writes one example's pixels into dst in HWC order, appending
// extra channel planes after the base channels of each pixel.
func stackImage(dst []float32, example *core.Example) {
	extra := len(example.Extra) / example.NumPixels()
	if extra == 0 {
		copy(dst, example.Image)
		return
	}

	channels := example.Channels + extra
	plane := example.NumPixels()
	for pixel := 0; pixel < plane; pixel++ {
		offset := pixel * channels
		copy(dst[offset:], example.Image[pixel*example.Channels:(pixel+1)*example.Channels])
		for k := 0; k < extra; k++ {
			dst[offset+example.Channels+k] = example.Extra[k*plane+pixel]
		}
	}
}

// Inputs converts the batch image stack into the model input tensors:
// one [size, height, width, channels] float32 tensor.
func (b *Batch) Inputs() []*tensors.Tensor {
	images := make([][][][]float32, b.Size)
	imageStride := b.Height * b.Width * b.Channels
	rowStride := b.Width * b.Channels
	for i := range images {
		flat := b.images[i*imageStride : (i+1)*imageStride]
		rows := make([][][]float32, b.Height)
		for y := range rows {
			row := make([][]float32, b.Width)
			for x := range row {
				offset := y*rowStride + x*b.Channels
				row[x] = flat[offset : offset+b.Channels]
			}
			rows[y] = row
		}
		images[i] = rows
	}
	return []*tensors.Tensor{tensors.FromAnyValue(images)}
}

// Labels converts the batch annotations into the label tensors:
// boxes [size, maxBoxes, 4] float32, classes [size, maxBoxes] int64 and
// numBoxes [size] int32.
func (b *Batch) Labels() []*tensors.Tensor {
	boxes := make([][][]float32, b.Size)
	classes := make([][]int64, b.Size)
	for i := range boxes {
		perBox := make([][]float32, b.MaxBoxes)
		for j := range perBox {
			offset := (i*b.MaxBoxes + j) * 4
			perBox[j] = b.boxes[offset : offset+4]
		}
		boxes[i] = perBox
		classes[i] = b.classes[i*b.MaxBoxes : (i+1)*b.MaxBoxes]
	}
	return []*tensors.Tensor{
		tensors.FromAnyValue(boxes),
		tensors.FromAnyValue(classes),
		tensors.FromAnyValue(b.numBoxes),
	}
}
