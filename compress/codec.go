// Package compress provides the chunk payload codecs used by the container
// format.
//
// Every dataset chunk in a container file is compressed independently with
// the codec recorded in the file header, so a reader can decompress any chunk
// without touching its neighbors. Chunk payloads are small (typically a few
// KiB of fixed-width elements), which favors block codecs over streaming
// ones.
//
// Available codecs:
//   - None: pass-through, for data that is already compact
//   - Zstd: best ratio, pure-Go by default (see zstd_cgo.go for the cgo path)
//   - S2: fastest, moderate ratio
//   - LZ4: fast block compression with wide interoperability
package compress

import "fmt"

// Type identifies a chunk compression algorithm in the container header.
type Type uint8

const (
	None Type = 0x1 // no compression
	Zstd Type = 0x2 // Zstandard
	S2   Type = 0x3 // S2 (Snappy-compatible superset)
	LZ4  Type = 0x4 // LZ4 block format
)

func (t Type) String() string {
	switch t {
	case None:
		return "None"
	case Zstd:
		return "Zstd"
	case S2:
		return "S2"
	case LZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Valid reports whether t names a known codec.
func (t Type) Valid() bool {
	return t >= None && t <= LZ4
}

// Compressor compresses one chunk payload.
//
// The returned slice is newly allocated (or the input itself for the
// pass-through codec); the input is never modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores one chunk payload.
//
// Returns an error when the data is corrupted or was produced by a different
// codec.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions. All implementations in this package are
// stateless values safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor
}

// ForType returns the codec for a header compression tag.
func ForType(t Type) (Codec, error) {
	switch t {
	case None:
		return NoopCodec{}, nil
	case Zstd:
		return ZstdCodec{}, nil
	case S2:
		return S2Codec{}, nil
	case LZ4:
		return LZ4Codec{}, nil
	default:
		return nil, fmt.Errorf("unknown compression type: %v", t)
	}
}
