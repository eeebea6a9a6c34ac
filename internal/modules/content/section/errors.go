package section

import "errors"

var (
	// ErrNotFound means an operation referenced an id absent from the store.
	ErrNotFound = errors.New("section not found")
	// ErrInvalidOrder means a reorder request was not a permutation of the current ids.
	ErrInvalidOrder = errors.New("invalid section order")
	// ErrPersistence means the underlying key-value medium failed to load or save.
	ErrPersistence = errors.New("section persistence failed")
	// ErrValidation means the caller supplied an empty name, unknown template or bad styling.
	ErrValidation = errors.New("invalid section input")
)
