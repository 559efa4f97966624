package model

import (
	"fmt"
)

// Song is one entry of the library. It is immutable once read from the store.
type Song struct {
	Artist string
	Album  string
	Title  string
	Path   string
	Disc   uint8
	Track  uint8
	// Gain is a linear amplitude multiplier (10^(dB/20)), not decibels.
	Gain float32
	// Position is the index of the record the song was decoded from.
	Position uint32
}

// String returns a short human readable form of the song.
func (s Song) String() string {
	return fmt.Sprintf("%s / %s / %d.%02d %s", s.Artist, s.Album, s.Disc, s.Track, s.Title)
}

// Album is a titled sequence of songs ordered by (Disc, Track).
type Album struct {
	Title string
	Songs []Song
}

// ItemKind tags the variant of an Item.
type ItemKind uint8

const (
	ItemArtist ItemKind = iota
	ItemAlbum
	ItemSong
)

// String returns the name of the kind.
func (k ItemKind) String() string {
	switch k {
	case ItemArtist:
		return "artist"
	case ItemAlbum:
		return "album"
	case ItemSong:
		return "song"
	default:
		return fmt.Sprintf("ItemKind(%d)", uint8(k))
	}
}

// Item is a search result. Which fields are meaningful depends on Kind:
// artists only set Artist, albums set Artist and Album, songs set everything.
type Item struct {
	Kind   ItemKind
	Artist string
	Album  string
	Title  string
	Disc   uint8
	Track  uint8
}

// ArtistItem returns an artist item.
func ArtistItem(name string) Item {
	return Item{Kind: ItemArtist, Artist: name}
}

// AlbumItem returns an album item.
func AlbumItem(artist, title string) Item {
	return Item{Kind: ItemAlbum, Artist: artist, Album: title}
}

// SongItem returns a song item.
func SongItem(s Song) Item {
	return Item{Kind: ItemSong, Artist: s.Artist, Album: s.Album, Title: s.Title, Disc: s.Disc, Track: s.Track}
}

// Name returns the text the item is matched on.
func (it Item) Name() string {
	switch it.Kind {
	case ItemArtist:
		return it.Artist
	case ItemAlbum:
		return it.Album
	default:
		return it.Title
	}
}

// ScanStatus is the outcome of a rescan.
type ScanStatus uint8

const (
	// ScanCompleted means every file was extracted and the new library is published.
	ScanCompleted ScanStatus = iota
	// ScanCompletedWithErrors means the library was rebuilt from the files that succeeded.
	ScanCompletedWithErrors
	// ScanFileInUse means another rescan owns the store; nothing was changed.
	ScanFileInUse
	// ScanFailed means the rebuild was aborted and the previous library is still served.
	ScanFailed
)

// String returns the name of the status.
func (s ScanStatus) String() string {
	switch s {
	case ScanCompleted:
		return "completed"
	case ScanCompletedWithErrors:
		return "completed_with_errors"
	case ScanFileInUse:
		return "file_in_use"
	case ScanFailed:
		return "failed"
	default:
		return fmt.Sprintf("ScanStatus(%d)", uint8(s))
	}
}

// ScanResult reports what a rescan did.
type ScanResult struct {
	Status ScanStatus
	// Errors holds one "path: reason" message per file that could not be indexed.
	Errors []string
	// Songs is the number of songs in the published store.
	Songs int
	// Reused is the number of records carried over unchanged by an incremental rescan.
	Reused int
}
