// Package engine owns the live {store, index} pair and runs rescans.
//
// The pair is held in an immutable, reference-counted Snapshot behind a single
// atomic pointer. Readers Acquire the current snapshot, use it for as long as an
// operation lasts and Release it; they never block on, or observe half of, a
// rescan. A rescan builds a complete new store and index off to the side and
// publishes them with one pointer swap. The store mapping of the old snapshot is
// closed when its last reader releases it.
//
// Exactly one rescan runs at a time, guarded in-process by the resource
// controller's writer slot and across processes by a lock file next to the
// store. A request that loses either race returns ScanFileInUse immediately.
// The winner removes any temp store a crashed writer left behind.
//
// Corruption of the store or the settings file is recovered locally, at Open or
// when the settings are loaded: both files are recreated empty and a warning is
// logged.
package engine
