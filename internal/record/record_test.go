package record

import (
	"encoding/binary"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/songdex/model"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		song model.Song
	}{
		{"Simple", model.Song{Artist: "Artist", Album: "Album", Title: "Title", Path: "/music/a.flac", Disc: 1, Track: 7, Gain: 0.25}},
		{"Empty", model.Song{Path: "x.mp3"}},
		{"Unicode", model.Song{Artist: "Sigur Rós", Album: "Ágætis byrjun", Title: "Svefn-g-englar", Path: "/m/ágætis/01.ogg", Disc: 2, Track: 255, Gain: 1.5}},
		{"MaxFields", model.Song{Artist: strings.Repeat("a", 100), Album: strings.Repeat("b", 100), Title: strings.Repeat("c", 100), Path: strings.Repeat("p", 214)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Encode(tt.song)
			require.NoError(t, err)
			assert.Len(t, r.Bytes(), RecordLen)

			got, err := Decode(r.Bytes())
			require.NoError(t, err)
			assert.Equal(t, tt.song, got)
		})
	}
}

func TestEncode_Layout(t *testing.T) {
	r, err := Encode(model.Song{Artist: "ab", Album: "c", Title: "", Path: "p", Track: 3, Disc: 4, Gain: 2})
	require.NoError(t, err)

	b := r.Bytes()
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(b[0:]))
	assert.Equal(t, "ab", string(b[2:4]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(b[4:]))
	assert.Equal(t, "c", string(b[6:7]))
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(b[7:]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(b[9:]))
	assert.Equal(t, "p", string(b[11:12]))
	assert.Equal(t, byte(3), b[TextCap])
	assert.Equal(t, byte(4), b[TextCap+1])
	assert.Equal(t, []byte{0, 0, 0, 0x40}, b[TextCap+2:RecordLen])
}

func TestEncode_TruncatesRoundRobin(t *testing.T) {
	s := model.Song{
		Artist: strings.Repeat("a", 300),
		Album:  strings.Repeat("b", 300),
		Title:  strings.Repeat("c", 10),
		Path:   strings.Repeat("p", 10),
	}

	r, err := Encode(s)
	require.NoError(t, err)
	got, err := Decode(r.Bytes())
	require.NoError(t, err)

	// Title runs dry after ten rounds, then artist and album share the rest.
	assert.Equal(t, strings.Repeat("a", 252), got.Artist)
	assert.Equal(t, strings.Repeat("b", 252), got.Album)
	assert.Equal(t, "", got.Title)
	assert.Equal(t, s.Path, got.Path)
}

func TestEncode_NeverTruncatesPath(t *testing.T) {
	path := strings.Repeat("p", TextCap-numFields*prefixLen)
	r, err := Encode(model.Song{Artist: "artist", Album: "album", Title: "title", Path: path})
	require.NoError(t, err)

	got, err := Decode(r.Bytes())
	require.NoError(t, err)
	assert.Equal(t, path, got.Path)
	assert.Empty(t, got.Artist)
	assert.Empty(t, got.Album)
	assert.Empty(t, got.Title)
}

func TestEncode_PathTooLong(t *testing.T) {
	path := strings.Repeat("p", TextCap-numFields*prefixLen+1)
	_, err := Encode(model.Song{Path: path})
	assert.ErrorIs(t, err, ErrPathTooLong)
}

func TestEncode_InvalidPath(t *testing.T) {
	_, err := Encode(model.Song{Path: "bad\xffpath"})
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestEncode_TruncatesWholeRunes(t *testing.T) {
	s := model.Song{
		Artist: strings.Repeat("é", 200),
		Album:  strings.Repeat("ü", 200),
		Title:  strings.Repeat("日", 100),
		Path:   "/p",
	}

	r, err := Encode(s)
	require.NoError(t, err)
	got, err := Decode(r.Bytes())
	require.NoError(t, err)

	for _, f := range []string{got.Artist, got.Album, got.Title} {
		assert.True(t, utf8.ValidString(f))
	}
	assert.LessOrEqual(t, 8+len(got.Artist)+len(got.Album)+len(got.Title)+len(got.Path), TextCap)
	assert.True(t, strings.HasPrefix(s.Artist, got.Artist))
	assert.True(t, strings.HasPrefix(s.Album, got.Album))
	assert.True(t, strings.HasPrefix(s.Title, got.Title))
}

func TestEncode_ReplacesInvalidText(t *testing.T) {
	r, err := Encode(model.Song{Artist: "a\xffb", Path: "p"})
	require.NoError(t, err)
	got, err := Decode(r.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "a�b", got.Artist)
}

func TestDecode_Corruption(t *testing.T) {
	valid, err := Encode(model.Song{Artist: "a", Album: "b", Title: "c", Path: "d"})
	require.NoError(t, err)

	t.Run("Short", func(t *testing.T) {
		_, err := Decode(valid[:RecordLen-1])
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("PrefixTooLarge", func(t *testing.T) {
		r := valid
		binary.LittleEndian.PutUint16(r[0:], TextCap+1)
		_, err := Decode(r.Bytes())
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("PrefixOverrunsRegion", func(t *testing.T) {
		r := valid
		binary.LittleEndian.PutUint16(r[0:], TextCap-1)
		_, err := Decode(r.Bytes())
		var ce *CorruptionError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, 0, ce.Offset)
	})

	t.Run("LaterPrefixOverruns", func(t *testing.T) {
		r := valid
		// Path prefix sits after three one-byte fields.
		binary.LittleEndian.PutUint16(r[9:], TextCap-10)
		_, err := Decode(r.Bytes())
		var ce *CorruptionError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, 9, ce.Offset)
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		r := valid
		r[2] = 0xff
		_, err := Decode(r.Bytes())
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

func FuzzDecode(f *testing.F) {
	r, _ := Encode(model.Song{Artist: "a", Album: "b", Title: "c", Path: "d", Gain: 1})
	f.Add(r.Bytes())
	f.Add(make([]byte, RecordLen))
	f.Add([]byte{0xff, 0xff})

	f.Fuzz(func(t *testing.T, b []byte) {
		s, err := Decode(b)
		if err != nil {
			return
		}
		// Anything that decodes must re-encode to an equivalent record.
		r, err := Encode(s)
		if err != nil {
			t.Fatalf("decoded song does not re-encode: %v", err)
		}
		again, err := Decode(r.Bytes())
		if err != nil {
			t.Fatalf("re-encoded record does not decode: %v", err)
		}
		if again.Artist != s.Artist || again.Path != s.Path || again.Track != s.Track {
			t.Fatalf("round trip mismatch: %+v != %+v", again, s)
		}
	})
}
