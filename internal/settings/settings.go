// Package settings reads and writes the player settings file, which also holds
// the saved play queue as store records.
//
// Layout (little-endian):
//
//	volume u8 | queue index u16 | elapsed seconds f32 |
//	output device, NUL-terminated | music folder, NUL-terminated |
//	N × record.RecordLen queue records
package settings

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/hupe1980/songdex/internal/fs"
	"github.com/hupe1980/songdex/internal/record"
	"github.com/hupe1980/songdex/model"
)

// ErrInvalidSettings is returned when settings cannot be represented in the file.
var ErrInvalidSettings = errors.New("settings: invalid settings")

const headerLen = 1 + 2 + 4

// Settings is the persisted player state.
type Settings struct {
	Volume       uint8
	QueueIndex   uint16
	Elapsed      float32
	OutputDevice string
	MusicFolder  string
	Queue        []model.Song
}

// Encode serializes s. Strings containing NUL are rejected, and queue songs are
// encoded with the store record codec.
func Encode(s Settings) ([]byte, error) {
	for _, str := range []string{s.OutputDevice, s.MusicFolder} {
		if strings.IndexByte(str, 0) >= 0 {
			return nil, fmt.Errorf("%w: string contains NUL: %q", ErrInvalidSettings, str)
		}
	}

	out := make([]byte, headerLen, headerLen+len(s.OutputDevice)+len(s.MusicFolder)+2+len(s.Queue)*record.RecordLen)
	out[0] = s.Volume
	binary.LittleEndian.PutUint16(out[1:], s.QueueIndex)
	binary.LittleEndian.PutUint32(out[3:], math.Float32bits(s.Elapsed))
	out = append(out, s.OutputDevice...)
	out = append(out, 0)
	out = append(out, s.MusicFolder...)
	out = append(out, 0)

	for i, song := range s.Queue {
		r, err := record.Encode(song)
		if err != nil {
			return nil, fmt.Errorf("settings: queue entry %d: %w", i, err)
		}
		out = append(out, r[:]...)
	}
	return out, nil
}

// Decode parses a settings file. Malformed input wraps record.ErrCorrupt.
func Decode(b []byte) (Settings, error) {
	if len(b) < headerLen {
		return Settings{}, corrupt("file of %d bytes is shorter than the header", len(b))
	}

	s := Settings{
		Volume:     b[0],
		QueueIndex: binary.LittleEndian.Uint16(b[1:]),
		Elapsed:    math.Float32frombits(binary.LittleEndian.Uint32(b[3:])),
	}

	rest := b[headerLen:]
	var err error
	if s.OutputDevice, rest, err = cstring(rest); err != nil {
		return Settings{}, err
	}
	if s.MusicFolder, rest, err = cstring(rest); err != nil {
		return Settings{}, err
	}

	if len(rest)%record.RecordLen != 0 {
		return Settings{}, corrupt("queue of %d bytes is not a multiple of %d", len(rest), record.RecordLen)
	}
	for i := 0; len(rest) > 0; i++ {
		song, err := record.Decode(rest[:record.RecordLen])
		if err != nil {
			return Settings{}, fmt.Errorf("settings: queue: %w", record.AtRecord(err, i))
		}
		s.Queue = append(s.Queue, song)
		rest = rest[record.RecordLen:]
	}
	return s, nil
}

func cstring(b []byte) (string, []byte, error) {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return "", nil, corrupt("unterminated string")
	}
	if !utf8.Valid(b[:i]) {
		return "", nil, corrupt("string is not valid UTF-8")
	}
	return string(b[:i]), b[i+1:], nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("settings: %w: %s", record.ErrCorrupt, fmt.Sprintf(format, args...))
}

// Load reads the settings file at path. A missing file yields zero settings.
func Load(fsys fs.FileSystem, path string) (Settings, error) {
	f, err := fsys.OpenFile(path, os.O_RDONLY, 0)
	if errors.Is(err, os.ErrNotExist) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("settings: open %s: %w", path, err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return Settings{}, fmt.Errorf("settings: read %s: %w", path, err)
	}
	return Decode(b)
}

// Save atomically replaces the settings file at path.
func Save(fsys fs.FileSystem, path string, s Settings) error {
	b, err := Encode(s)
	if err != nil {
		return err
	}
	if err := fs.WriteFileAtomic(fsys, path, b, 0o644); err != nil {
		return fmt.Errorf("settings: save %s: %w", path, err)
	}
	return nil
}

// Remove deletes the settings file at path, if any.
func Remove(fsys fs.FileSystem, path string) error {
	if err := fsys.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("settings: remove %s: %w", path, err)
	}
	return nil
}
