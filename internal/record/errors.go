package record

import (
	"errors"
	"fmt"
)

var (
	// ErrCorrupt is returned when bytes do not form valid records.
	ErrCorrupt = errors.New("record: corrupt data")

	// ErrPathTooLong is returned when a path cannot fit in the text region even
	// with artist, album and title emptied.
	ErrPathTooLong = errors.New("record: path too long")

	// ErrInvalidPath is returned when a path is not valid UTF-8.
	ErrInvalidPath = errors.New("record: path is not valid UTF-8")
)

// CorruptionError describes where and why a record failed to decode.
//
// The original sentinel can be matched with errors.Is(err, ErrCorrupt).
type CorruptionError struct {
	// Record is the index of the offending record in the store, or -1 if unknown.
	Record int
	// Offset is the byte offset inside the record.
	Offset int
	Reason string
}

func (e *CorruptionError) Error() string {
	if e.Record < 0 {
		return fmt.Sprintf("record: corrupt at offset %d: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("record: record %d corrupt at offset %d: %s", e.Record, e.Offset, e.Reason)
}

func (e *CorruptionError) Unwrap() error { return ErrCorrupt }

func corruptf(offset int, format string, args ...any) *CorruptionError {
	return &CorruptionError{Record: -1, Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

// AtRecord returns a copy of err annotated with the record index when err is a
// *CorruptionError. Other errors are returned unchanged.
func AtRecord(err error, i int) error {
	var ce *CorruptionError
	if errors.As(err, &ce) {
		cp := *ce
		cp.Record = i
		return &cp
	}
	return err
}
