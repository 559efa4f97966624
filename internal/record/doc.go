// Package record implements the fixed-size binary record a song is stored as.
//
// # Layout
//
//	offset  size     field
//	0       TextCap  text region: artist, album, title, path
//	                 each as uint16 LE length + UTF-8 bytes, zero padded
//	522     1        track number
//	523     1        disc number
//	524     4        gain (float32 LE, linear multiplier)
//
// Records are RecordLen bytes and carry no header, checksum or version. A store
// is a plain concatenation of records.
//
// # Trust
//
// Decode never trusts a length prefix: every prefix is checked against the text
// region before it is used, and a violation is reported as a *CorruptionError
// wrapping ErrCorrupt.
//
// Validate is a cheap probe used when a store is opened. It checks the store length
// and only the first record, which catches truncated writes and foreign files but
// gives no guarantee about later records. ValidateAll scans everything.
package record
