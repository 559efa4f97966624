package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/songdex/internal/record"
	"github.com/hupe1980/songdex/internal/search"
	"github.com/hupe1980/songdex/model"
)

// view runs fn against the current snapshot.
func (e *Engine) view(fn func(*Snapshot)) bool {
	snap, err := e.Acquire()
	if err != nil {
		return false
	}
	defer e.Release(snap)
	fn(snap)
	return true
}

// Search ranks the library against query and returns at most k results.
// It never fails; a closed engine yields nil.
func (e *Engine) Search(ctx context.Context, query string, k int) []search.Result {
	start := time.Now()
	var out []search.Result
	e.view(func(s *Snapshot) {
		out = search.Rank(ctx, s.index, query, k)
	})
	e.metrics.OnSearch(time.Since(start), len(out))
	return out
}

// Artists returns every artist in catalog order.
func (e *Engine) Artists() []string {
	var out []string
	e.view(func(s *Snapshot) { out = s.index.Artists() })
	return out
}

// Albums returns the albums of artist in catalog order.
func (e *Engine) Albums(artist string) []model.Album {
	var out []model.Album
	e.view(func(s *Snapshot) { out = s.index.Albums(artist) })
	return out
}

// Songs returns the songs of an album ordered by (disc, track).
func (e *Engine) Songs(artist, album string) []model.Song {
	var out []model.Song
	e.view(func(s *Snapshot) { out = s.index.Songs(artist, album) })
	return out
}

// AlbumPositions returns the store positions of an album's songs.
func (e *Engine) AlbumPositions(artist, album string) *roaring.Bitmap {
	out := roaring.New()
	e.view(func(s *Snapshot) { out = s.index.AlbumPositions(artist, album) })
	return out
}

// Walk visits the catalog in pre-order until fn returns false.
func (e *Engine) Walk(fn func(model.Item) bool) {
	e.view(func(s *Snapshot) { s.index.Walk(fn) })
}

// Len returns the number of songs in the library.
func (e *Engine) Len() int {
	var n int
	e.view(func(s *Snapshot) { n = s.index.Len() })
	return n
}

// ArtistCount returns the number of artists in the library.
func (e *Engine) ArtistCount() int {
	var n int
	e.view(func(s *Snapshot) { n = s.index.ArtistCount() })
	return n
}

// Song reads the song at a store position directly from the store.
func (e *Engine) Song(pos int) (song model.Song, err error) {
	start := time.Now()
	defer func() { e.metrics.OnLookup(time.Since(start), err) }()

	snap, err := e.Acquire()
	if err != nil {
		return model.Song{}, err
	}
	defer e.Release(snap)

	if pos < 0 || pos >= snap.store.Len() {
		return model.Song{}, fmt.Errorf("%w: position %d", ErrNotFound, pos)
	}
	return snap.store.At(pos)
}

// Verify decodes every record of the current store. Open only probes the
// first record; Verify is the exhaustive check.
func (e *Engine) Verify() error {
	snap, err := e.Acquire()
	if err != nil {
		return err
	}
	defer e.Release(snap)
	return record.ValidateAll(snap.store.Bytes())
}
