// Package hash provides the checksum used by library archives.
//
// Archives carry a CRC32-Castagnoli (CRC32C) of their uncompressed record body.
// Go's crc32 package uses hardware instructions (SSE4.2, ARM CRC) when present.
//
//	sum := hash.CRC32C(body)
package hash
