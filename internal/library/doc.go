// Package library builds the in-memory artist → album → song catalog from a
// flat store.
//
// An Index is immutable once built. Artists enumerate case-insensitively
// ascending, each artist's albums likewise by title, and each album's songs by
// (disc, track) with ties kept in store order. Case-insensitive ties fall back
// to byte order so that enumeration is deterministic.
//
// Browse methods never fail: an unknown artist or album yields an empty result.
// Slices returned by the Index are shared and must not be modified.
package library
