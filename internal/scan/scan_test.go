package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/songdex/internal/resource"
	"github.com/hupe1980/songdex/model"
)

func touch(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, n := range names {
		p := filepath.Join(root, n)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(n), 0o644))
	}
}

func paths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func TestWalk(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"b/02.FLAC", "b/01.mp3", "a/cover.jpg", "a/x.ogg", "notes.txt", "c/d/e.Opus", "z.wav",
	)

	files, err := Walk(context.Background(), root, nil)
	require.NoError(t, err)

	var rel []string
	for _, p := range paths(files) {
		r, err := filepath.Rel(root, p)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.Equal(t, []string{"a/x.ogg", "b/01.mp3", "b/02.FLAC", "c/d/e.Opus", "z.wav"}, rel)
	assert.False(t, files[0].ModTime.IsZero())
}

func TestWalk_CustomExtensions(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.flac", "b.mp3", "c.ape")

	files, err := Walk(context.Background(), root, []string{".APE", "mp3"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "b.mp3"), filepath.Join(root, "c.ape")}, paths(files))
}

func TestWalk_MissingRoot(t *testing.T) {
	_, err := Walk(context.Background(), filepath.Join(t.TempDir(), "nope"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWalk_Cancelled(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.flac")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Walk(ctx, root, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun(t *testing.T) {
	reader := MetadataReaderFunc(func(path string) (model.Song, error) {
		if strings.Contains(path, "bad") {
			return model.Song{}, errors.New("no tags found")
		}
		return model.Song{Artist: "A", Album: "B", Title: filepath.Base(path), Path: "ignored"}, nil
	})

	in := []string{"/m/1.flac", "/m/bad-z.flac", "/m/2.flac", "/m/bad-a.flac", "/m/3.flac"}
	res, err := Run(context.Background(), in, reader, Options{Controller: resource.NewController(resource.Config{Workers: 3})})
	require.NoError(t, err)

	require.Len(t, res.Songs, 3)
	for i, want := range []string{"/m/1.flac", "/m/2.flac", "/m/3.flac"} {
		assert.Equal(t, want, res.Songs[i].Path)
	}
	assert.Equal(t, []string{
		"/m/bad-a.flac: no tags found",
		"/m/bad-z.flac: no tags found",
	}, Messages(res.Failures))
}

func TestRun_BoundedParallelism(t *testing.T) {
	var active, peak atomic.Int32
	reader := MetadataReaderFunc(func(path string) (model.Song, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		defer active.Add(-1)
		return model.Song{Title: path}, nil
	})

	in := make([]string, 200)
	for i := range in {
		in[i] = filepath.Join("/m", string(rune('a'+i%26)), "x.flac")
	}
	_, err := Run(context.Background(), in, reader, Options{Controller: resource.NewController(resource.Config{Workers: 2})})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := MetadataReaderFunc(func(string) (model.Song, error) { return model.Song{}, nil })
	_, err := Run(ctx, []string{"a", "b"}, reader, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Empty(t *testing.T) {
	res, err := Run(context.Background(), nil, MetadataReaderFunc(nil), Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Songs)
	assert.Empty(t, res.Failures)
	assert.Nil(t, Messages(nil))
}

func TestSortFailures(t *testing.T) {
	failures := []Failure{{"a b", "x"}, {"a", "y"}, {"a", "z"}}
	SortFailures(failures)
	assert.Equal(t, []string{"a: y", "a: z", "a b: x"}, Messages(failures))
}
