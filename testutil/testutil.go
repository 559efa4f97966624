package testutil

import (
	"fmt"
	"math/rand"
	"os"
	"sync"

	"github.com/hupe1980/songdex/internal/record"
	"github.com/hupe1980/songdex/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

var syllables = []string{"ka", "lo", "mi", "ra", "shu", "ven", "tor", "el", "dra", "quo", "zen", "bi"}

// Word returns a random pronounceable word of 2-4 syllables, capitalized at
// random so that case-insensitive ordering is exercised.
func (r *RNG) Word() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.wordLocked()
}

func (r *RNG) wordLocked() string {
	n := 2 + r.rand.Intn(3)
	b := make([]byte, 0, 4*n)
	for range n {
		b = append(b, syllables[r.rand.Intn(len(syllables))]...)
	}
	if r.rand.Intn(2) == 0 {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// Catalog returns artists*albums*tracks songs in shuffled order. Track numbers
// run from 1 per album, and every third album spans two discs.
func (r *RNG) Catalog(artists, albums, tracks int) []model.Song {
	r.mu.Lock()
	defer r.mu.Unlock()

	songs := make([]model.Song, 0, artists*albums*tracks)
	for a := range artists {
		artist := fmt.Sprintf("%s %d", r.wordLocked(), a)
		for b := range albums {
			album := fmt.Sprintf("%s %d", r.wordLocked(), b)
			for t := range tracks {
				disc := uint8(1)
				if b%3 == 2 && t >= tracks/2 {
					disc = 2
				}
				songs = append(songs, model.Song{
					Artist: artist,
					Album:  album,
					Title:  r.wordLocked(),
					Path:   fmt.Sprintf("/music/%d/%d/%02d.flac", a, b, t),
					Disc:   disc,
					Track:  uint8(t + 1),
					Gain:   r.rand.Float32() * 2,
				})
			}
		}
	}

	r.rand.Shuffle(len(songs), func(i, j int) { songs[i], songs[j] = songs[j], songs[i] })
	return songs
}

// NumberedSongs returns n songs named "{i} artist", "{i} album", "{i} title" and
// "{i} path", all on disc 1, track 1, with gain 0.25.
func NumberedSongs(n int) []model.Song {
	songs := make([]model.Song, n)
	for i := range songs {
		songs[i] = model.Song{
			Artist: fmt.Sprintf("%d artist", i),
			Album:  fmt.Sprintf("%d album", i),
			Title:  fmt.Sprintf("%d title", i),
			Path:   fmt.Sprintf("%d path", i),
			Disc:   1,
			Track:  1,
			Gain:   0.25,
		}
	}
	return songs
}

// StoreBytes encodes songs back to back.
func StoreBytes(songs []model.Song) ([]byte, error) {
	out := make([]byte, 0, len(songs)*record.RecordLen)
	for _, s := range songs {
		r, err := record.Encode(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r[:]...)
	}
	return out, nil
}

// WriteStore writes songs to a store file at path.
func WriteStore(path string, songs []model.Song) error {
	data, err := StoreBytes(songs)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
