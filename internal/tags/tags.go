package tags

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"github.com/hupe1980/songdex/model"
)

const (
	UnknownArtist = "unknown artist"
	UnknownAlbum  = "unknown album"
)

// ErrNoTags is returned for files that carry no recognizable tag block.
var ErrNoTags = errors.New("no tags found")

// Reader reads song metadata from audio files.
type Reader struct{}

// ReadMetadata opens path and reads its tags.
func (Reader) ReadMetadata(path string) (model.Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Song{}, err
	}
	defer f.Close()

	s, err := Read(f, filepath.Base(path))
	if err != nil {
		return model.Song{}, err
	}
	s.Path = path
	return s, nil
}

// Read parses tags from r. name is used for the title when the file has none.
func Read(r io.ReadSeeker, name string) (model.Song, error) {
	m, err := tag.ReadFrom(r)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return model.Song{}, ErrNoTags
		}
		return model.Song{}, fmt.Errorf("read tags: %w", err)
	}

	track, _ := m.Track()
	disc, _ := m.Disc()

	artist := m.Artist()
	if aa := m.AlbumArtist(); aa != "" {
		artist = aa
	}
	if artist == "" {
		artist = UnknownArtist
	}

	album := m.Album()
	if album == "" {
		album = UnknownAlbum
	}

	title := m.Title()
	if title == "" {
		title = strings.TrimSuffix(name, filepath.Ext(name))
	}

	return model.Song{
		Artist: artist,
		Album:  album,
		Title:  title,
		Track:  clampByte(track),
		Disc:   clampByte(disc),
		Gain:   trackGain(m.Raw()),
	}, nil
}

func clampByte(n int) uint8 {
	return uint8(min(max(n, 0), math.MaxUint8))
}

// trackGain finds a ReplayGain track gain among the raw tag values. Vorbis
// comments expose it as a plain key, ID3 as a TXXX frame description.
func trackGain(raw map[string]interface{}) float32 {
	for k, v := range raw {
		var text string
		switch v := v.(type) {
		case string:
			if !isTrackGainKey(k) {
				continue
			}
			text = v
		case *tag.Comm:
			if !isTrackGainKey(v.Description) {
				continue
			}
			text = v.Text
		default:
			continue
		}
		if g, ok := ParseGain(text); ok {
			return g
		}
	}
	return 1
}

func isTrackGainKey(k string) bool {
	return strings.HasSuffix(strings.ToLower(k), "replaygain_track_gain")
}

// ParseGain converts a ReplayGain value such as "-6.02 dB" to a linear
// amplitude multiplier.
func ParseGain(s string) (float32, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(s, "dB"), "db"))
	db, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(db) || math.IsInf(db, 0) {
		return 0, false
	}
	return float32(math.Pow(10, db/20)), true
}
