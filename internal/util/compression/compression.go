// Package compression packs stored slot and comment bodies.
package compression

import (
	"bytes"
	"errors"
	"fmt"
)

type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

const (
	Zstd = "zstd"
	Gzip = "gzip"
	None = "none"
)

var ErrUnknownCodec = errors.New("unknown compression codec")

var (
	_ Compressor = GzipCompressor{}
	_ Compressor = ZstdCompressor{}
	_ Compressor = Identity{}
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
)

// ForName returns the codec configured by name. An empty name selects zstd.
func ForName(name string) (Compressor, error) {
	switch name {
	case Zstd, "":
		return ZstdCompressor{}, nil
	case Gzip:
		return GzipCompressor{}, nil
	case None:
		return Identity{}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownCodec, name)
	}
}

// Detect picks the codec whose frame header starts data. Stored bodies are
// UTF-8 text before packing, and neither magic is valid UTF-8, so anything
// else is treated as uncompressed.
func Detect(data []byte) Compressor {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return ZstdCompressor{}
	case bytes.HasPrefix(data, gzipMagic):
		return GzipCompressor{}
	default:
		return Identity{}
	}
}

// Unpack decompresses data with whichever codec wrote it, so rows and objects
// stay readable after the configured codec changes.
func Unpack(data []byte) ([]byte, error) {
	return Detect(data).Decompress(data)
}

// Identity stores bodies as they are.
type Identity struct{}

func (Identity) Compress(data []byte) ([]byte, error) {
	return bytes.Clone(data), nil
}

func (Identity) Decompress(data []byte) ([]byte, error) {
	return bytes.Clone(data), nil
}
