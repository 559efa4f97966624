package library

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/songdex/internal/flatstore"
	"github.com/hupe1980/songdex/internal/fs"
	"github.com/hupe1980/songdex/internal/record"
	"github.com/hupe1980/songdex/model"
	"github.com/hupe1980/songdex/testutil"
)

func openStore(t *testing.T, songs []model.Song) *flatstore.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library.db")
	require.NoError(t, testutil.WriteStore(path, songs))
	s, err := flatstore.OpenOrCreate(fs.Default, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBuild_TrackOrder(t *testing.T) {
	store := openStore(t, []model.Song{
		{Artist: "A", Album: "B", Title: "second", Path: "2", Disc: 1, Track: 2},
		{Artist: "A", Album: "B", Title: "first", Path: "1", Disc: 1, Track: 1},
	})

	idx, err := Build(context.Background(), store, 4)
	require.NoError(t, err)

	songs := idx.Songs("A", "B")
	require.Len(t, songs, 2)
	assert.Equal(t, uint8(1), songs[0].Track)
	assert.Equal(t, uint8(2), songs[1].Track)
	assert.Equal(t, uint32(1), songs[0].Position)
}

func TestBuild_Grouping(t *testing.T) {
	songs := testutil.NewRNG(7).Catalog(20, 3, 9)
	store := openStore(t, songs)

	idx, err := Build(context.Background(), store, 3)
	require.NoError(t, err)
	assert.Equal(t, len(songs), idx.Len())
	assert.Equal(t, 20, idx.ArtistCount())

	seen := make(map[string]int)
	for _, artist := range idx.Artists() {
		for _, album := range idx.Albums(artist) {
			for i, s := range album.Songs {
				assert.Equal(t, artist, s.Artist)
				assert.Equal(t, album.Title, s.Album)
				seen[s.Path]++
				if i > 0 {
					prev := album.Songs[i-1]
					assert.True(t, prev.Disc < s.Disc || (prev.Disc == s.Disc && prev.Track <= s.Track),
						"%v before %v", prev, s)
				}
			}
		}
	}

	assert.Len(t, seen, len(songs))
	for path, n := range seen {
		assert.Equal(t, 1, n, path)
	}
}

func TestBuild_StableWithinEqualTracks(t *testing.T) {
	store := openStore(t, []model.Song{
		{Artist: "A", Album: "B", Title: "x", Path: "x", Disc: 1, Track: 1},
		{Artist: "A", Album: "B", Title: "y", Path: "y", Disc: 1, Track: 1},
		{Artist: "A", Album: "B", Title: "z", Path: "z", Disc: 1, Track: 1},
	})

	idx, err := Build(context.Background(), store, 2)
	require.NoError(t, err)

	var titles []string
	for _, s := range idx.Songs("A", "B") {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{"x", "y", "z"}, titles)
}

func TestBuild_CaseInsensitiveOrdering(t *testing.T) {
	var songs []model.Song
	for i, artist := range []string{"beta", "Alpha", "alpha", "ÉCHO", "charlie", "Delta"} {
		for j, album := range []string{"zulu", "Yankee", "x-ray"} {
			songs = append(songs, model.Song{Artist: artist, Album: album, Title: "t", Path: strings.Repeat("p", i*3+j+1)})
		}
	}

	idx, err := Build(context.Background(), openStore(t, songs), 4)
	require.NoError(t, err)

	assert.Equal(t, []string{"Alpha", "alpha", "beta", "charlie", "Delta", "ÉCHO"}, idx.Artists())

	var titles []string
	for _, a := range idx.Albums("beta") {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"x-ray", "Yankee", "zulu"}, titles)
}

func TestBuild_Empty(t *testing.T) {
	idx, err := Build(context.Background(), openStore(t, nil), 4)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Artists())

	n := 0
	idx.Walk(func(model.Item) bool { n++; return true })
	assert.Zero(t, n)
}

func TestBuild_DecodeFailureAborts(t *testing.T) {
	data, err := testutil.StoreBytes(testutil.NumberedSongs(1000))
	require.NoError(t, err)
	data[700*record.RecordLen+2] = 0xff

	path := filepath.Join(t.TempDir(), "library.db")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	store, err := flatstore.OpenOrCreate(fs.Default, path)
	require.NoError(t, err)
	defer store.Close()

	_, err = Build(context.Background(), store, 4)
	require.ErrorIs(t, err, record.ErrCorrupt)

	var ce *record.CorruptionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 700, ce.Record)
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, openStore(t, testutil.NumberedSongs(2000)), 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIndex_UnknownKeys(t *testing.T) {
	idx := FromSongs([]model.Song{{Artist: "A", Album: "B", Title: "c", Path: "p"}})

	assert.Empty(t, idx.Albums("nobody"))
	assert.Empty(t, idx.Songs("A", "nothing"))
	assert.Empty(t, idx.Songs("nobody", "B"))
	assert.True(t, idx.AlbumPositions("nobody", "B").IsEmpty())
	assert.True(t, idx.ArtistPositions("nobody").IsEmpty())
}

func TestIndex_Positions(t *testing.T) {
	store := openStore(t, []model.Song{
		{Artist: "A", Album: "One", Title: "1", Path: "a", Track: 1},
		{Artist: "B", Album: "Two", Title: "1", Path: "b", Track: 1},
		{Artist: "A", Album: "One", Title: "2", Path: "c", Track: 2},
		{Artist: "A", Album: "Three", Title: "1", Path: "d", Track: 1},
	})
	idx, err := Build(context.Background(), store, 1)
	require.NoError(t, err)

	assert.Equal(t, []uint32{0, 2}, idx.AlbumPositions("A", "One").ToArray())
	assert.Equal(t, []uint32{0, 2, 3}, idx.ArtistPositions("A").ToArray())

	// Callers get a copy.
	bm := idx.AlbumPositions("A", "One")
	bm.Add(99)
	assert.False(t, idx.AlbumPositions("A", "One").Contains(99))
}

func TestIndex_WalkPreOrder(t *testing.T) {
	idx := FromSongs([]model.Song{
		{Artist: "b", Album: "y", Title: "s3", Path: "3", Track: 1},
		{Artist: "a", Album: "x", Title: "s2", Path: "2", Track: 2},
		{Artist: "a", Album: "x", Title: "s1", Path: "1", Track: 1},
	})

	var got []string
	idx.Walk(func(it model.Item) bool {
		got = append(got, it.Kind.String()+":"+it.Name())
		return true
	})
	assert.Equal(t, []string{
		"artist:a", "album:x", "song:s1", "song:s2",
		"artist:b", "album:y", "song:s3",
	}, got)

	var n int
	idx.Walk(func(model.Item) bool { n++; return n < 3 })
	assert.Equal(t, 3, n)
}
