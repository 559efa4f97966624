package library

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"github.com/hupe1980/songdex/internal/record"
	"github.com/hupe1980/songdex/model"
)

// Source is the record source an Index is built from.
type Source interface {
	Len() int
	Raw(i int) ([]byte, error)
}

// Index is an immutable artist → album → song catalog.
type Index struct {
	artists []string
	albums  map[string][]model.Album
	// positions[artist][album] holds the store positions of the album's songs.
	positions map[string]map[string]*roaring.Bitmap
	songs     int
}

// Empty returns an index with no songs.
func Empty() *Index {
	return &Index{
		albums:    map[string][]model.Album{},
		positions: map[string]map[string]*roaring.Bitmap{},
	}
}

// minChunk keeps tiny stores from being split into more goroutines than records.
const minChunk = 256

// Build decodes every record of src in parallel and groups the songs into an
// Index. Any record that fails to decode aborts the build with an error wrapping
// record.ErrCorrupt; songs are never dropped silently.
func Build(ctx context.Context, src Source, workers int) (*Index, error) {
	n := src.Len()
	songs := make([]model.Song, n)

	if workers <= 0 {
		workers = 1
	}
	chunk := max(minChunk, (n+workers-1)/workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if i%minChunk == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				raw, err := src.Raw(i)
				if err != nil {
					return err
				}
				s, err := record.Decode(raw)
				if err != nil {
					return record.AtRecord(err, i)
				}
				s.Position = uint32(i)
				songs[i] = s
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("library: build: %w", err)
	}

	return fromSongs(songs), nil
}

// FromSongs builds an index from already decoded songs, in the given order.
func FromSongs(songs []model.Song) *Index {
	return fromSongs(slices.Clone(songs))
}

type bucketKey struct {
	artist, album string
}

func fromSongs(songs []model.Song) *Index {
	buckets := make(map[bucketKey][]model.Song)
	for _, s := range songs {
		k := bucketKey{s.Artist, s.Album}
		buckets[k] = append(buckets[k], s)
	}

	idx := Empty()
	idx.songs = len(songs)

	for k, b := range buckets {
		slices.SortStableFunc(b, func(x, y model.Song) int {
			return cmp.Or(cmp.Compare(x.Disc, y.Disc), cmp.Compare(x.Track, y.Track))
		})

		bm := roaring.New()
		for _, s := range b {
			bm.Add(s.Position)
		}

		if _, ok := idx.positions[k.artist]; !ok {
			idx.positions[k.artist] = make(map[string]*roaring.Bitmap)
			idx.artists = append(idx.artists, k.artist)
		}
		idx.positions[k.artist][k.album] = bm
		idx.albums[k.artist] = append(idx.albums[k.artist], model.Album{Title: k.album, Songs: b})
	}

	fold := newFolder()
	for _, albums := range idx.albums {
		slices.SortFunc(albums, func(x, y model.Album) int {
			return fold.compare(x.Title, y.Title)
		})
	}
	slices.SortFunc(idx.artists, fold.compare)

	return idx
}

// folder caches case-folded keys. It is not safe for concurrent use.
type folder struct {
	caser cases.Caser
	keys  map[string]string
}

func newFolder() *folder {
	return &folder{caser: cases.Fold(), keys: make(map[string]string)}
}

func (f *folder) key(s string) string {
	k, ok := f.keys[s]
	if !ok {
		k = f.caser.String(s)
		f.keys[s] = k
	}
	return k
}

func (f *folder) compare(a, b string) int {
	return cmp.Or(strings.Compare(f.key(a), f.key(b)), strings.Compare(a, b))
}

// Len returns the number of songs.
func (idx *Index) Len() int { return idx.songs }

// ArtistCount returns the number of distinct artists.
func (idx *Index) ArtistCount() int { return len(idx.artists) }

// Artists returns every artist, case-insensitively ascending.
func (idx *Index) Artists() []string { return idx.artists }

// Albums returns the albums of artist ordered by title.
func (idx *Index) Albums(artist string) []model.Album { return idx.albums[artist] }

// Songs returns the songs of one album ordered by (disc, track).
func (idx *Index) Songs(artist, album string) []model.Song {
	for _, a := range idx.albums[artist] {
		if a.Title == album {
			return a.Songs
		}
	}
	return nil
}

// AlbumPositions returns the store positions of an album's songs. The result is
// a copy the caller may modify; an unknown album yields an empty bitmap.
func (idx *Index) AlbumPositions(artist, album string) *roaring.Bitmap {
	if bm, ok := idx.positions[artist][album]; ok {
		return bm.Clone()
	}
	return roaring.New()
}

// ArtistPositions returns the union of the store positions of all of an
// artist's albums.
func (idx *Index) ArtistPositions(artist string) *roaring.Bitmap {
	var bms []*roaring.Bitmap
	for _, bm := range idx.positions[artist] {
		bms = append(bms, bm)
	}
	return roaring.FastOr(bms...)
}

// Walk visits the catalog in pre-order: each artist, then each of its albums
// followed by that album's songs. It stops when fn returns false.
func (idx *Index) Walk(fn func(model.Item) bool) {
	for _, artist := range idx.artists {
		if !fn(model.ArtistItem(artist)) {
			return
		}
		for _, album := range idx.albums[artist] {
			if !fn(model.AlbumItem(artist, album.Title)) {
				return
			}
			for _, s := range album.Songs {
				if !fn(model.SongItem(s)) {
					return
				}
			}
		}
	}
}
