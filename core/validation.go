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
	"fmt"
	"time"
)

// ValidateExample validates an Example according to domain rules.
//
// Validation rules:
//   - Image must not be empty and must match Height*Width*Channels
//   - Height, Width, Channels must be positive
//   - Extra must be a whole number of Height*Width planes
//   - Box coordinates must lie in [0, 1] with min <= max
//   - Boxes and Classes must have the same length
//   - Masks, when present, must match Boxes in count and the image in size
//   - Recorded must not be in the future
//
// NOT validated (populated by the decoder):
//   - ClassIds (empty until a label map is applied)
//   - Id (0 is valid until assigned)
func ValidateExample(example *Example) error {
	if example == nil {
		return fmt.Errorf("%w: example is nil", ErrInvalidExample)
	}

	if example.Height <= 0 || example.Width <= 0 || example.Channels <= 0 {
		return fmt.Errorf("%w: %w: %dx%dx%d",
			ErrInvalidExample, ErrInvalidShape, example.Height, example.Width, example.Channels)
	}

	if len(example.Image) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidExample, ErrEmptyImage)
	}

	want := example.Height * example.Width * example.Channels
	if len(example.Image) != want {
		return fmt.Errorf("%w: %w: got %d values, want %d",
			ErrInvalidExample, ErrShapeMismatch, len(example.Image), want)
	}

	if plane := example.NumPixels(); len(example.Extra)%plane != 0 {
		return fmt.Errorf("%w: %w: %d values over a %d pixel plane",
			ErrInvalidExample, ErrExtraChannelMismatch, len(example.Extra), plane)
	}

	for i, box := range example.Boxes {
		if err := ValidateBox(box); err != nil {
			return fmt.Errorf("%w: box %d: %w", ErrInvalidExample, i, err)
		}
	}

	if len(example.Classes) != len(example.Boxes) {
		return fmt.Errorf("%w: %w: %d boxes, %d classes",
			ErrInvalidExample, ErrClassCountMismatch, len(example.Boxes), len(example.Classes))
	}

	if len(example.Masks) > 0 {
		if len(example.Masks) != len(example.Boxes) {
			return fmt.Errorf("%w: %w: %d boxes, %d masks",
				ErrInvalidExample, ErrMaskCountMismatch, len(example.Boxes), len(example.Masks))
		}
		for i, mask := range example.Masks {
			if len(mask) != example.NumPixels() {
				return fmt.Errorf("%w: %w: mask %d has %d values, want %d",
					ErrInvalidExample, ErrMaskShapeMismatch, i, len(mask), example.NumPixels())
			}
		}
	}

	if !IsValidTimestamp(example.Recorded) {
		return fmt.Errorf("%w: %w", ErrInvalidExample, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateBox validates that box coordinates are normalized and ordered.
func ValidateBox(box Box) error {
	coords := [4]float32{box.YMin, box.XMin, box.YMax, box.XMax}
	for _, c := range coords {
		if c < 0 || c > 1 {
			return fmt.Errorf("%w: coordinate %v outside [0, 1]", ErrInvalidBox, c)
		}
	}
	if box.YMin > box.YMax || box.XMin > box.XMax {
		return fmt.Errorf("%w: min corner after max corner", ErrInvalidBox)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
