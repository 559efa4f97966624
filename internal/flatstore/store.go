package flatstore

import (
	"errors"
	"fmt"
	"iter"
	"os"

	"github.com/hupe1980/songdex/internal/fs"
	"github.com/hupe1980/songdex/internal/mmap"
	"github.com/hupe1980/songdex/internal/record"
	"github.com/hupe1980/songdex/model"
)

// Store is an open, mapped flat store.
type Store struct {
	path string
	m    *mmap.Mapping
}

// OpenOrCreate opens the store at path, creating an empty file if it is absent.
// The contents are probed with record.Validate; a failure wraps record.ErrCorrupt
// and no store is returned.
func OpenOrCreate(fsys fs.FileSystem, path string) (*Store, error) {
	f, err := fsys.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("flatstore: open %s: %w", path, err)
	}
	m, err := mmap.Map(f)
	if cerr := f.Close(); err == nil && cerr != nil {
		_ = m.Close()
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("flatstore: map %s: %w", path, err)
	}
	if err := record.Validate(m.Bytes()); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("flatstore: %s: %w", path, err)
	}
	_ = m.Advise(mmap.AccessRandom)

	return &Store{path: path, m: m}, nil
}

// Reset deletes the store at path and opens a fresh empty one in its place.
func Reset(fsys fs.FileSystem, path string) (*Store, error) {
	if err := fsys.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("flatstore: reset %s: %w", path, err)
	}
	return OpenOrCreate(fsys, path)
}

// Path returns the file the store was opened from.
func (s *Store) Path() string { return s.path }

// Len returns the number of records.
func (s *Store) Len() int { return s.m.Len() / record.RecordLen }

// Bytes returns the mapped store contents.
func (s *Store) Bytes() []byte { return s.m.Bytes() }

// Raw returns the bytes of record i without decoding them.
func (s *Store) Raw(i int) ([]byte, error) {
	if i < 0 || i >= s.Len() {
		return nil, fmt.Errorf("%w: %d of %d", ErrOutOfRange, i, s.Len())
	}
	b, err := s.m.Window(i*record.RecordLen, record.RecordLen)
	if errors.Is(err, mmap.ErrClosed) {
		return nil, ErrClosed
	}
	return b, err
}

// At decodes record i.
func (s *Store) At(i int) (model.Song, error) {
	b, err := s.Raw(i)
	if err != nil {
		return model.Song{}, err
	}
	song, err := record.Decode(b)
	if err != nil {
		return model.Song{}, record.AtRecord(err, i)
	}
	song.Position = uint32(i)
	return song, nil
}

// Records yields a copy of every record in store order.
func (s *Store) Records() iter.Seq[record.Record] {
	return func(yield func(record.Record) bool) {
		data := s.m.Bytes()
		for off := 0; off+record.RecordLen <= len(data); off += record.RecordLen {
			var r record.Record
			copy(r[:], data[off:])
			if !yield(r) {
				return
			}
		}
	}
}

// Close unmaps the store. It is idempotent.
func (s *Store) Close() error {
	return s.m.Close()
}
