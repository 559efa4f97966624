package flatstore

import "errors"

var (
	// ErrFileInUse is returned when another rebuild owns the temp file.
	ErrFileInUse = errors.New("flatstore: store file in use")

	// ErrOutOfRange is returned when a record position is past the end of the store.
	ErrOutOfRange = errors.New("flatstore: record position out of range")

	// ErrClosed is returned when using a closed store.
	ErrClosed = errors.New("flatstore: store is closed")
)
