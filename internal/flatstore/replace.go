package flatstore

import (
	"bufio"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/hupe1980/songdex/internal/fs"
	"github.com/hupe1980/songdex/internal/record"
)

// TempPath returns the name of the file a rebuild of path is written to.
func TempPath(path string) string { return fs.TempPath(path) }

// Replace writes records to a new store that atomically takes the place of the
// one at path, then opens it.
//
// The temp file is created exclusively. If it already exists another rebuild
// owns it and ErrFileInUse is returned without touching either file. Callers
// that hold the writer lock remove a stale temp file first. On any
// other failure the temp file is removed and the live store is left as it was.
// Existing Store values keep mapping the old contents until they are closed.
func Replace(fsys fs.FileSystem, path string, records iter.Seq[record.Record]) (*Store, error) {
	tmp := TempPath(path)
	f, err := fsys.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, ErrFileInUse
		}
		return nil, fmt.Errorf("flatstore: create %s: %w", tmp, err)
	}

	if err := writeRecords(f, records); err != nil {
		_ = fsys.Remove(tmp)
		return nil, fmt.Errorf("flatstore: write %s: %w", tmp, err)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return nil, fmt.Errorf("flatstore: rename %s: %w", tmp, err)
	}
	if err := fs.SyncDir(fsys, filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("flatstore: sync dir: %w", err)
	}

	return OpenOrCreate(fsys, path)
}

// writeRecords writes, syncs and closes f.
func writeRecords(f fs.File, records iter.Seq[record.Record]) error {
	bw := bufio.NewWriterSize(f, 64*record.RecordLen)
	var werr error
	for r := range records {
		if _, werr = bw.Write(r[:]); werr != nil {
			break
		}
	}
	if werr == nil {
		werr = bw.Flush()
	}
	if werr == nil {
		werr = f.Sync()
	}
	if err := f.Close(); werr == nil {
		werr = err
	}
	return werr
}
