// Package scan finds audio files under a directory and extracts their metadata
// with a bounded pool of workers.
//
// Walk is deterministic: files come back in lexical order. Run keeps that order
// for the songs it returns and reports each file that could not be read as one
// "path: reason" message, sorted by path.
package scan
