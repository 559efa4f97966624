// Package fs provides the filesystem abstraction used by the store and settings
// writers, plus a fault-injecting wrapper for tests.
//
//   - [FileSystem]: open, remove, rename, stat, truncate
//   - [LocalFS]: the os-backed implementation ([Default])
//   - [FaultyFS]: injects write, sync, close and rename failures by name pattern
//
// Tests inject [FaultyFS] to prove that a failed rebuild leaves the live store
// untouched:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp", fs.Fault{FailAfterBytes: 1024})
//
// Reading mapped store bytes does not go through this package; see internal/mmap.
package fs
