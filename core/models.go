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


package core

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for training examples.
// It is generated using content-based hashing or assigned by a record store.
type ID uint64

// IDFromContent generates a deterministic ID from raw bytes using BLAKE2b
// hashing. Identical content always produces the same ID, which makes record
// files and stores seeded from the same inputs comparable.
func IDFromContent(data []byte) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Box is an axis-aligned bounding box in normalized image coordinates.
// Coordinates are ordered [ymin, xmin, ymax, xmax], each in [0, 1].
type Box struct {
	YMin float32
	XMin float32
	YMax float32
	XMax float32
}

// Example is a single training record: an image with its ground-truth
// annotations. Examples are stored serialized in record files or a record
// store and decoded back into structured form by the decode package.
type Example struct {
	Id       ID
	SourceId string // identifier of the originating frame or asset

	// Image payload: Height*Width*Channels float32 values in row-major
	// HWC order.
	Image    []float32
	Height   int
	Width    int
	Channels int

	// Extra holds additional image channels beyond the base Channels,
	// Height*Width values per extra channel, concatenated. Empty when the
	// example carries no additional channels.
	Extra []float32

	Boxes   []Box
	Classes []string // class names; resolved against a label map at decode time

	// Masks holds one Height*Width instance mask per box. Empty unless the
	// source recorded instance masks.
	Masks [][]float32

	Recorded time.Time
	Metadata map[string]string

	// ClassIds is populated by the decoder from Classes and a label map.
	// It is never serialized.
	ClassIds []int64
}

// ContentID derives the content-based ID for the example from its image
// payload and source identifier.
func (e *Example) ContentID() ID {
	buf := make([]byte, 0, len(e.SourceId)+len(e.Image)*4)
	buf = append(buf, e.SourceId...)
	var scratch [4]byte
	for _, v := range e.Image {
		binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(v))
		buf = append(buf, scratch[:]...)
	}
	return IDFromContent(buf)
}

// NumPixels returns the number of pixels in the base image plane.
func (e *Example) NumPixels() int {
	return e.Height * e.Width
}
