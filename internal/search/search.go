package search

import (
	"cmp"
	"context"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/songdex/internal/library"
	"github.com/hupe1980/songdex/model"
)

const (
	// DefaultLimit is the number of items a search returns at most.
	DefaultLimit = 40

	// MinAccuracy is the score an entry must exceed to be returned.
	MinAccuracy = 0.70
)

// Result is a ranked item.
type Result struct {
	Item  model.Item
	Score float64
}

// Search returns the items of idx that best match query, at most k of them.
// A k <= 0 means DefaultLimit. Search never fails; if ctx is cancelled before
// scoring finishes it returns nil.
func Search(ctx context.Context, idx *library.Index, query string, k int) []model.Item {
	ranked := Rank(ctx, idx, query, k)
	if ranked == nil {
		return nil
	}
	items := make([]model.Item, len(ranked))
	for i, r := range ranked {
		items[i] = r.Item
	}
	return items
}

// Rank is Search with scores attached.
//
// An empty query returns the first k items of a pre-order walk of the catalog,
// each scored 1.0, without computing any similarity.
func Rank(ctx context.Context, idx *library.Index, query string, k int) []Result {
	if k <= 0 {
		k = DefaultLimit
	}
	q := strings.ToLower(query)

	if q == "" {
		out := make([]Result, 0, min(k, idx.ArtistCount()+2*idx.Len()))
		idx.Walk(func(it model.Item) bool {
			out = append(out, Result{Item: it, Score: 1})
			return len(out) < k
		})
		return out
	}

	artists := idx.Artists()
	perArtist := make([][]Result, len(artists))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, artist := range artists {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perArtist[i] = scoreArtist(idx, artist, q)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil
	}

	var kept []Result
	for _, rs := range perArtist {
		kept = append(kept, rs...)
	}

	// Rank by score alone, then restore determinism within runs of equal score.
	slices.SortStableFunc(kept, func(a, b Result) int {
		return cmp.Compare(b.Score, a.Score)
	})
	kept = kept[:min(len(kept), k)]
	slices.SortStableFunc(kept, func(a, b Result) int {
		if a.Score != b.Score {
			return cmp.Compare(b.Score, a.Score)
		}
		return tieBreak(a.Item, b.Item)
	})

	return kept
}

func scoreArtist(idx *library.Index, artist, q string) []Result {
	var out []Result
	keep := func(it model.Item) {
		if s := JaroWinkler(q, strings.ToLower(it.Name())); s > MinAccuracy {
			out = append(out, Result{Item: it, Score: s})
		}
	}

	keep(model.ArtistItem(artist))
	for _, album := range idx.Albums(artist) {
		keep(model.AlbumItem(artist, album.Title))
		for _, s := range album.Songs {
			keep(model.SongItem(s))
		}
	}
	return out
}

// tieBreak orders equally scored items: artists, then albums, then songs by
// (disc, track).
func tieBreak(a, b model.Item) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	if a.Kind != model.ItemSong {
		return 0
	}
	return cmp.Or(cmp.Compare(a.Disc, b.Disc), cmp.Compare(a.Track, b.Track))
}
