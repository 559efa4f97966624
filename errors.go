package songdex

import (
	"errors"
	"fmt"

	"github.com/hupe1980/songdex/internal/engine"
	"github.com/hupe1980/songdex/internal/flatstore"
	"github.com/hupe1980/songdex/internal/record"
	"github.com/hupe1980/songdex/internal/settings"
)

var (
	// ErrCorrupt is returned when a store, archive or settings file does not
	// hold valid records.
	ErrCorrupt = errors.New("corrupt data")

	// ErrFileInUse is returned when another rebuild owns the store.
	ErrFileInUse = errors.New("library file in use")

	// ErrClosed is returned by operations on a closed Library.
	ErrClosed = errors.New("library closed")

	// ErrPathTooLong is returned when a file path does not fit in a record.
	ErrPathTooLong = errors.New("path too long")

	// ErrNotFound is returned when a store position holds no song.
	ErrNotFound = errors.New("not found")

	// ErrInvalidSettings is returned when settings cannot be saved.
	ErrInvalidSettings = errors.New("invalid settings")
)

// CorruptionError describes where a record failed to decode.
//
// It is reachable with errors.As from any error matching ErrCorrupt that came
// from a record.
type CorruptionError = record.CorruptionError

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, record.ErrCorrupt):
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	case errors.Is(err, flatstore.ErrFileInUse):
		return fmt.Errorf("%w: %w", ErrFileInUse, err)
	case errors.Is(err, engine.ErrClosed), errors.Is(err, flatstore.ErrClosed):
		return fmt.Errorf("%w: %w", ErrClosed, err)
	case errors.Is(err, record.ErrPathTooLong):
		return fmt.Errorf("%w: %w", ErrPathTooLong, err)
	case errors.Is(err, engine.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, settings.ErrInvalidSettings):
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	return err
}
