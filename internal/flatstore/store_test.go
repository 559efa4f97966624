package flatstore

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/songdex/internal/fs"
	"github.com/hupe1980/songdex/internal/record"
	"github.com/hupe1980/songdex/model"
	"github.com/hupe1980/songdex/testutil"
)

func encodeAll(t *testing.T, songs []model.Song) []record.Record {
	t.Helper()
	out := make([]record.Record, len(songs))
	for i, s := range songs {
		r, err := record.Encode(s)
		require.NoError(t, err)
		out[i] = r
	}
	return out
}

func TestOpenOrCreate_CreatesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")

	s, err := OpenOrCreate(fs.Default, path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, path, s.Path())
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), fi.Size())

	_, err = s.At(0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestReplace_TenThousandSongs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	songs := testutil.NumberedSongs(10_000)

	s, err := Replace(fs.Default, path, slices.Values(encodeAll(t, songs)))
	require.NoError(t, err)
	defer s.Close()

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(10_000*record.RecordLen), fi.Size())
	assert.Equal(t, 10_000, s.Len())

	got, err := s.At(9999)
	require.NoError(t, err)
	assert.Equal(t, "9999 artist", got.Artist)
	assert.Equal(t, uint32(9999), got.Position)

	_, err = os.Stat(TempPath(path))
	assert.True(t, os.IsNotExist(err))
}

func TestReplace_OldMappingStaysValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")

	old, err := Replace(fs.Default, path, slices.Values(encodeAll(t, testutil.NumberedSongs(3))))
	require.NoError(t, err)
	defer old.Close()

	fresh, err := Replace(fs.Default, path, slices.Values(encodeAll(t, []model.Song{{Artist: "new", Path: "n"}})))
	require.NoError(t, err)
	defer fresh.Close()

	assert.Equal(t, 3, old.Len())
	s, err := old.At(2)
	require.NoError(t, err)
	assert.Equal(t, "2 artist", s.Artist)

	assert.Equal(t, 1, fresh.Len())
	s, err = fresh.At(0)
	require.NoError(t, err)
	assert.Equal(t, "new", s.Artist)
}

func TestReplace_TempExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	require.NoError(t, testutil.WriteStore(path, testutil.NumberedSongs(2)))
	require.NoError(t, os.WriteFile(TempPath(path), []byte("partial"), 0o644))

	_, err := Replace(fs.Default, path, slices.Values(encodeAll(t, testutil.NumberedSongs(5))))
	assert.ErrorIs(t, err, ErrFileInUse)

	// Neither file is touched.
	tmp, err := os.ReadFile(TempPath(path))
	require.NoError(t, err)
	assert.Equal(t, "partial", string(tmp))

	s, err := OpenOrCreate(fs.Default, path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 2, s.Len())
}

func TestReplace_FailureKeepsLiveStore(t *testing.T) {
	tests := []struct {
		name  string
		fault fs.Fault
	}{
		{"Write", fs.Fault{FailAfterBytes: 3 * record.RecordLen}},
		{"Sync", fs.Fault{FailAfterBytes: -1, FailOnSync: true}},
		{"Close", fs.Fault{FailAfterBytes: -1, FailOnClose: true}},
		{"Rename", fs.Fault{FailAfterBytes: -1, FailOnRename: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "library.db")
			require.NoError(t, testutil.WriteStore(path, testutil.NumberedSongs(2)))

			ffs := fs.NewFaultyFS(nil)
			ffs.AddRule(".tmp", tt.fault)

			_, err := Replace(ffs, path, slices.Values(encodeAll(t, testutil.NumberedSongs(100))))
			require.ErrorIs(t, err, fs.ErrInjected)

			_, err = os.Stat(TempPath(path))
			assert.True(t, os.IsNotExist(err), "temp file must be removed")

			s, err := OpenOrCreate(fs.Default, path)
			require.NoError(t, err)
			defer s.Close()
			assert.Equal(t, 2, s.Len())
		})
	}
}

func TestOpenOrCreate_TruncatedStoreIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	require.NoError(t, testutil.WriteStore(path, testutil.NumberedSongs(4)))
	require.NoError(t, os.Truncate(path, 3*record.RecordLen+17))

	_, err := OpenOrCreate(fs.Default, path)
	require.ErrorIs(t, err, record.ErrCorrupt)

	s, err := Reset(fs.Default, path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 0, s.Len())
}

func TestOpenOrCreate_MapsThroughFileSystem(t *testing.T) {
	tests := []struct {
		name  string
		fault fs.Fault
	}{
		{"Open", fs.Fault{FailAfterBytes: -1, FailOnOpen: true}},
		{"Stat", fs.Fault{FailAfterBytes: -1, FailOnStat: true}},
		{"Close", fs.Fault{FailAfterBytes: -1, FailOnClose: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "library.db")
			require.NoError(t, testutil.WriteStore(path, testutil.NumberedSongs(3)))

			ffs := fs.NewFaultyFS(nil)
			ffs.AddRule("library.db", tt.fault)

			_, err := OpenOrCreate(ffs, path)
			require.ErrorIs(t, err, fs.ErrInjected)

			s, err := OpenOrCreate(fs.Default, path)
			require.NoError(t, err)
			defer s.Close()
			assert.Equal(t, 3, s.Len())
		})
	}
}

func TestReset_Missing(t *testing.T) {
	s, err := Reset(fs.Default, filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 0, s.Len())
}

func TestStore_RecordsAndRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	songs := testutil.NumberedSongs(5)
	require.NoError(t, testutil.WriteStore(path, songs))

	s, err := OpenOrCreate(fs.Default, path)
	require.NoError(t, err)
	defer s.Close()

	var buf bytes.Buffer
	for r := range s.Records() {
		buf.Write(r[:])
	}
	assert.Equal(t, s.Bytes(), buf.Bytes())

	raw, err := s.Raw(4)
	require.NoError(t, err)
	got, err := record.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "4 title", got.Title)

	_, err = s.Raw(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestStore_AtReportsCorruptRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	data, err := testutil.StoreBytes(testutil.NumberedSongs(3))
	require.NoError(t, err)
	data[2*record.RecordLen+2] = 0xff // only the first record is probed on open
	require.NoError(t, os.WriteFile(path, data, 0o644))

	s, err := OpenOrCreate(fs.Default, path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.At(2)
	var ce *record.CorruptionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 2, ce.Record)
}

func TestStore_Closed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	require.NoError(t, testutil.WriteStore(path, testutil.NumberedSongs(1)))

	s, err := OpenOrCreate(fs.Default, path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.At(0)
	assert.ErrorIs(t, err, ErrClosed)
}
