// Package search ranks catalog entries against a free-text query with
// Jaro-Winkler similarity.
//
// Every artist, album and song title is scored against the lower-cased query,
// entries at or below MinAccuracy are discarded, and the best K are returned.
// Ties are broken deterministically: artists before albums before songs, and
// songs by (disc, track).
//
// The Winkler prefix bonus is not capped at four characters. A query that
// shares a long prefix with a name is pulled towards 1.0 faster than in the
// textbook formulation; scores are clamped to [0, 1].
package search
