// Package flatstore implements the on-disk song store: a plain concatenation of
// fixed-size records with no header or footer.
//
// A Store is a read-only memory mapping of the file, validated with the
// first-record probe when it is opened. Stores are never patched in place.
// Replace writes a complete new file next to the live one and renames it over
// the top; mappings of the old file stay readable until they are closed.
//
// Archives (WriteArchive, ReadArchive) carry a store between machines in a
// checksummed, optionally compressed envelope.
package flatstore
