// Package tags is the default metadata reader. It reads ID3, MP4, FLAC and Ogg
// Vorbis tags with github.com/dhowden/tag.
//
// Missing fields fall back the way a library browser expects: the album artist
// wins over the track artist, an untitled file is named after its base name, and
// empty artist or album fields become "unknown artist" and "unknown album".
// ReplayGain track gain, when present, is converted from decibels to a linear
// multiplier; files without it get 1.0.
package tags
