package engine

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/songdex/internal/flatstore"
	"github.com/hupe1980/songdex/internal/library"
)

// Snapshot is an immutable store and the index built from it.
type Snapshot struct {
	refs  int64
	store *flatstore.Store
	index *library.Index
	// scannedAt is when the files behind the store were read. A file modified
	// later than this has to be read again by an incremental rescan.
	scannedAt time.Time
}

func newSnapshot(store *flatstore.Store, index *library.Index, scannedAt time.Time) *Snapshot {
	return &Snapshot{refs: 1, store: store, index: index, scannedAt: scannedAt}
}

// Store returns the snapshot's flat store.
func (s *Snapshot) Store() *flatstore.Store { return s.store }

// Index returns the snapshot's library index.
func (s *Snapshot) Index() *library.Index { return s.index }

// TryIncRef attempts to increment the reference count.
// Returns true if successful, false if the snapshot is already destroyed (refs == 0).
func (s *Snapshot) TryIncRef() bool {
	for {
		refs := atomic.LoadInt64(&s.refs)
		if refs <= 0 {
			return false
		}
		if atomic.CompareAndSwapInt64(&s.refs, refs, refs+1) {
			return true
		}
	}
}

// DecRef drops a reference and unmaps the store when it was the last one.
func (s *Snapshot) DecRef() {
	if atomic.AddInt64(&s.refs, -1) == 0 {
		_ = s.store.Close()
	}
}
