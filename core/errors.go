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

import "errors"

// Domain validation errors
var (
	// ErrInvalidExample indicates an Example failed validation.
	ErrInvalidExample = errors.New("invalid example")

	// ErrEmptyImage indicates the Image payload is empty.
	ErrEmptyImage = errors.New("image payload cannot be empty")

	// ErrInvalidShape indicates non-positive image dimensions.
	ErrInvalidShape = errors.New("image dimensions must be positive")

	// ErrShapeMismatch indicates the Image payload does not match the
	// declared Height*Width*Channels.
	ErrShapeMismatch = errors.New("image payload does not match declared shape")

	// ErrExtraChannelMismatch indicates the Extra payload is not a whole
	// number of Height*Width planes.
	ErrExtraChannelMismatch = errors.New("extra channels do not match image plane size")

	// ErrInvalidBox indicates box coordinates outside [0, 1] or inverted
	// corner ordering.
	ErrInvalidBox = errors.New("invalid box coordinates")

	// ErrClassCountMismatch indicates Boxes and Classes differ in length.
	ErrClassCountMismatch = errors.New("boxes and classes must have the same length")

	// ErrMaskCountMismatch indicates Masks and Boxes differ in length.
	ErrMaskCountMismatch = errors.New("masks and boxes must have the same length")

	// ErrMaskShapeMismatch indicates a mask plane does not cover the image.
	ErrMaskShapeMismatch = errors.New("mask does not match image plane size")

	// ErrInvalidTimestamp indicates a recorded timestamp in the future.
	ErrInvalidTimestamp = errors.New("recorded timestamp cannot be in the future")
)
