package flatstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/songdex/internal/hash"
	"github.com/hupe1980/songdex/internal/record"
)

// Compression selects the archive body codec.
type Compression uint8

const (
	// CompressionNone stores records as-is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses zstd (better ratio).
	CompressionZSTD Compression = 2
)

// String returns the name used on the command line.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression is the inverse of Compression.String.
func ParseCompression(s string) (Compression, error) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("flatstore: unknown compression %q", s)
}

// Archive header:
//
//	magic "SDXA" | version u8 | compression u8 | reserved u16 | count u32 | crc32c u32
//
// followed by the (possibly compressed) record body. The checksum covers the
// uncompressed body.
const (
	archiveMagic      = "SDXA"
	archiveVersion    = 1
	archiveHeaderSize = 16

	// MaxArchiveRecords bounds the record count an archive header may claim.
	MaxArchiveRecords = 1 << 20

	maxArchiveBody = MaxArchiveRecords * record.RecordLen
	// lz4 expands a block by at most this factor.
	lz4MaxRatio = 255
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxArchiveBody))
	return dec
}

// WriteArchive writes the contents of s to w.
func WriteArchive(w io.Writer, s *Store, c Compression) error {
	body := s.Bytes()

	var payload []byte
	switch c {
	case CompressionNone:
		payload = body
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(body)))
		n, err := lz4.CompressBlock(body, buf, nil)
		if err != nil {
			return fmt.Errorf("flatstore: lz4: %w", err)
		}
		if n == 0 {
			// Incompressible; fall back to a raw body.
			c, payload = CompressionNone, body
		} else {
			payload = buf[:n]
		}
	case CompressionZSTD:
		enc := getZstdEncoder()
		payload = enc.EncodeAll(body, nil)
		zstdEncoderPool.Put(enc)
	default:
		return fmt.Errorf("flatstore: unsupported compression %v", c)
	}

	var hdr [archiveHeaderSize]byte
	copy(hdr[0:4], archiveMagic)
	hdr[4] = archiveVersion
	hdr[5] = byte(c)
	binary.LittleEndian.PutUint32(hdr[8:], uint32(s.Len()))
	binary.LittleEndian.PutUint32(hdr[12:], hash.CRC32C(body))

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// Archive is a decoded, verified archive body.
type Archive struct {
	Compression Compression
	body        []byte
}

// Len returns the number of records in the archive.
func (a *Archive) Len() int { return len(a.body) / record.RecordLen }

// Records yields every archived record in order.
func (a *Archive) Records() iter.Seq[record.Record] {
	return func(yield func(record.Record) bool) {
		for off := 0; off < len(a.body); off += record.RecordLen {
			var r record.Record
			copy(r[:], a.body[off:])
			if !yield(r) {
				return
			}
		}
	}
}

// ReadArchive reads and verifies an archive. A bad magic number, a checksum
// mismatch or an undecodable record wraps record.ErrCorrupt.
func ReadArchive(r io.Reader) (*Archive, error) {
	var hdr [archiveHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, corruptArchive("short header: %v", err)
	}
	if string(hdr[0:4]) != archiveMagic {
		return nil, corruptArchive("bad magic %q", hdr[0:4])
	}
	if hdr[4] != archiveVersion {
		return nil, fmt.Errorf("flatstore: unsupported archive version %d", hdr[4])
	}
	c := Compression(hdr[5])
	count := int(binary.LittleEndian.Uint32(hdr[8:]))
	sum := binary.LittleEndian.Uint32(hdr[12:])
	if count > MaxArchiveRecords {
		return nil, corruptArchive("header claims %d records, at most %d allowed", count, MaxArchiveRecords)
	}
	size := count * record.RecordLen

	// No codec output is much larger than its input, so a payload past this
	// bound cannot belong to the header.
	limit := int64(size + size/128 + 1024)
	payload, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(payload)) > limit {
		return nil, corruptArchive("payload exceeds %d bytes for %d records", limit, count)
	}

	var body []byte
	switch c {
	case CompressionNone:
		body = payload
	case CompressionLZ4:
		if size > lz4MaxRatio*len(payload) {
			return nil, corruptArchive("lz4 payload of %d bytes cannot hold %d records", len(payload), count)
		}
		body = make([]byte, size)
		n, err := lz4.UncompressBlock(payload, body)
		if err != nil {
			return nil, corruptArchive("lz4: %v", err)
		}
		body = body[:n]
	case CompressionZSTD:
		dec := getZstdDecoder()
		if err := dec.Reset(bytes.NewReader(payload)); err != nil {
			return nil, corruptArchive("zstd: %v", err)
		}
		// Read one byte past the promised size so an overlong body is caught
		// without decoding all of it.
		body, err = io.ReadAll(io.LimitReader(dec, int64(size)+1))
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, corruptArchive("zstd: %v", err)
		}
	default:
		return nil, fmt.Errorf("flatstore: unsupported compression %v", c)
	}

	if len(body) != size {
		return nil, corruptArchive("body is %d bytes, header promises %d records", len(body), count)
	}
	if got := hash.CRC32C(body); got != sum {
		return nil, corruptArchive("checksum mismatch: %08x != %08x", got, sum)
	}
	if err := record.ValidateAll(body); err != nil {
		return nil, fmt.Errorf("flatstore: archive: %w", err)
	}

	return &Archive{Compression: c, body: body}, nil
}

func corruptArchive(format string, args ...any) error {
	return fmt.Errorf("flatstore: archive: %w: %s", record.ErrCorrupt, fmt.Sprintf(format, args...))
}
