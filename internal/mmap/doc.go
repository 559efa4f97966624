// Package mmap maps a store file into memory read-only.
//
// A Mapping is a snapshot of the file's bytes at the time it was mapped. Replacing
// the file by rename does not affect an existing mapping: the old inode stays
// alive until the mapping is closed, so readers keep a consistent view.
//
// # Usage
//
//	f, err := fsys.OpenFile("library.db", os.O_RDONLY, 0)
//	if err != nil { ... }
//	m, err := mmap.Map(f)
//	f.Close()
//	if err != nil { ... }
//	defer m.Close()
//
//	rec, err := m.Window(i*recordLen, recordLen)
//
// # Platform Support
//
//   - Unix: mmap(2) with madvise(2) hints
//   - Windows: CreateFileMapping/MapViewOfFile (hints are a no-op)
//
// # Thread Safety
//
// Bytes, Window and Len are safe for concurrent use. Close is idempotent; callers
// must not touch returned slices after Close. Callers that share a Mapping across
// goroutines should reference-count it.
package mmap
