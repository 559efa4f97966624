// Package testutil provides testing utilities for songdex.
//
// This package is intended for use in tests and benchmarks only.
// It generates synthetic catalogs and writes them as flat store files.
//
// # Synthetic Songs
//
//	songs := testutil.NumberedSongs(10_000) // "{i} artist", "{i} album", ...
//
//	rng := testutil.NewRNG(seed)
//	songs := rng.Catalog(50, 4, 12) // 50 artists x 4 albums x 12 tracks, shuffled
//
// # Store Files
//
//	err := testutil.WriteStore(path, songs)
package testutil
