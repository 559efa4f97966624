package record

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/hupe1980/songdex/model"
)

const (
	// TextCap is the capacity of the text region in bytes.
	TextCap = 522
	// RecordLen is the size of one encoded record.
	RecordLen = TextCap + 1 + 1 + 4

	prefixLen   = 2
	numFields   = 4
	trackOffset = TextCap
	discOffset  = TextCap + 1
	gainOffset  = TextCap + 2
)

// Record is the binary form of one song.
type Record [RecordLen]byte

// Bytes returns the record as a slice sharing its storage.
func (r *Record) Bytes() []byte {
	return r[:]
}

// Encode serializes s into a record.
//
// If the text fields do not fit in TextCap, trailing characters are removed one
// at a time from artist, album and title in turn. The path is never shortened;
// ErrPathTooLong is returned when it cannot fit on its own.
func Encode(s model.Song) (Record, error) {
	var r Record

	if !utf8.ValidString(s.Path) {
		return r, fmt.Errorf("%w: %q", ErrInvalidPath, s.Path)
	}
	if numFields*prefixLen+len(s.Path) > TextCap {
		return r, fmt.Errorf("%w: %d bytes, at most %d allowed", ErrPathTooLong, len(s.Path), TextCap-numFields*prefixLen)
	}

	fields := [numFields]string{
		strings.ToValidUTF8(s.Artist, string(utf8.RuneError)),
		strings.ToValidUTF8(s.Album, string(utf8.RuneError)),
		strings.ToValidUTF8(s.Title, string(utf8.RuneError)),
		s.Path,
	}
	truncate(&fields)

	off := 0
	for _, f := range fields {
		binary.LittleEndian.PutUint16(r[off:], uint16(len(f)))
		off += prefixLen
		off += copy(r[off:], f)
	}

	r[trackOffset] = s.Track
	r[discOffset] = s.Disc
	binary.LittleEndian.PutUint32(r[gainOffset:], math.Float32bits(s.Gain))
	return r, nil
}

// truncate pops one trailing rune at a time, round-robin over artist, album and
// title, until the text region budget is met. The caller guarantees the path fits.
func truncate(fields *[numFields]string) {
	for i := 0; textLen(fields) > TextCap; i = (i + 1) % (numFields - 1) {
		f := fields[i]
		if f == "" {
			continue
		}
		_, size := utf8.DecodeLastRuneInString(f)
		fields[i] = f[:len(f)-size]
	}
}

func textLen(fields *[numFields]string) int {
	n := 0
	for _, f := range fields {
		n += prefixLen + len(f)
	}
	return n
}

// Decode reads a song from the first RecordLen bytes of b.
//
// Every length prefix is bounds-checked and every field must be valid UTF-8;
// failures are returned as a *CorruptionError.
func Decode(b []byte) (model.Song, error) {
	if len(b) < RecordLen {
		return model.Song{}, corruptf(0, "short record: %d bytes, want %d", len(b), RecordLen)
	}

	var fields [numFields]string
	off := 0
	for i := range fields {
		raw, next, err := field(b, off)
		if err != nil {
			return model.Song{}, err
		}
		fields[i] = string(raw)
		off = next
	}

	return model.Song{
		Artist: fields[0],
		Album:  fields[1],
		Title:  fields[2],
		Path:   fields[3],
		Track:  b[trackOffset],
		Disc:   b[discOffset],
		Gain:   math.Float32frombits(binary.LittleEndian.Uint32(b[gainOffset:])),
	}, nil
}

// field returns the length-prefixed field at off and the offset following it.
func field(b []byte, off int) ([]byte, int, error) {
	if off+prefixLen > TextCap {
		return nil, 0, corruptf(off, "length prefix outside text region")
	}
	n := int(binary.LittleEndian.Uint16(b[off:]))
	if n > TextCap || off+n+prefixLen > TextCap {
		return nil, 0, corruptf(off, "length %d overruns text region", n)
	}
	start := off + prefixLen
	raw := b[start : start+n]
	if !utf8.Valid(raw) {
		return nil, 0, corruptf(start, "field is not valid UTF-8")
	}
	return raw, start + n, nil
}
