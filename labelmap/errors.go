package labelmap

import "errors"

var (
	// ErrEmptyLabelMap indicates a label map with no items.
	ErrEmptyLabelMap = errors.New("label map has no items")

	// ErrEmptyName indicates an item without a name.
	ErrEmptyName = errors.New("label map item name cannot be empty")

	// ErrInvalidID indicates a non-positive class id.
	ErrInvalidID = errors.New("label map ids must be positive")

	// ErrDuplicateName indicates two items sharing a name or display name.
	ErrDuplicateName = errors.New("duplicate label map name")

	// ErrDuplicateID indicates two items sharing a class id.
	ErrDuplicateID = errors.New("duplicate label map id")
)
