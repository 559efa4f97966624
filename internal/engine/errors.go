package engine

import "errors"

var (
	// ErrClosed is returned when an operation is attempted on a closed engine.
	ErrClosed = errors.New("engine closed")

	// ErrNotFound is returned when a store position does not exist.
	ErrNotFound = errors.New("not found")
)
