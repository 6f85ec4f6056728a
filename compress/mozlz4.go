package compress

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/arloliu/carve/errs"
)

// MozLZ4 container layout, as written by Firefox for sessionstore.jsonlz4,
// recovery.jsonlz4, recovery.baklz4 and bookmark backups.
const (
	MozLZ4Magic      = "mozLz40\x00"
	MozLZ4HeaderSize = len(MozLZ4Magic) + 4 // magic + little-endian uint32 size

	// MaxMozLZ4Size caps the decompressed size accepted from a header.
	MaxMozLZ4Size = 1 << 30
)

// MozLZ4Compressor implements Firefox's mozLz4 container: an 8-byte magic, the
// decompressed size as a little-endian uint32 and one LZ4 block.
type MozLZ4Compressor struct{}

var _ Codec = (*MozLZ4Compressor)(nil)

// NewMozLZ4Compressor creates a mozLz4 codec.
func NewMozLZ4Compressor() MozLZ4Compressor {
	return MozLZ4Compressor{}
}

// Compress wraps data in a mozLz4 container.
func (c MozLZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) > MaxMozLZ4Size {
		return nil, fmt.Errorf("mozlz4: payload of %d bytes exceeds %d", len(data), MaxMozLZ4Size)
	}

	dst := make([]byte, MozLZ4HeaderSize, MozLZ4HeaderSize+len(data)/2)
	copy(dst, MozLZ4Magic)
	binary.LittleEndian.PutUint32(dst[len(MozLZ4Magic):], uint32(len(data))) //nolint:gosec

	return compressLZ4Block(data, dst)
}

// Decompress validates the container header and decodes the block.
//
// A block that ends before the size in the header is reached, as happens
// when Firefox is killed mid-write, still yields the bytes decoded up to the
// cut.
//
// Returns:
//   - []byte: Decompressed payload, or its readable prefix
//   - error: ErrInvalidHeaderSize, ErrInvalidMagicNumber, ErrTruncatedInput
//     with a non-empty prefix, or a block decoding error
func (c MozLZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	size, err := ParseMozLZ4Header(data)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return []byte{}, nil
	}

	block := data[MozLZ4HeaderSize:]
	out, err := decompressLZ4Block(block, size)
	if err == nil {
		return out, nil
	}

	prefix := make([]byte, size)
	n := decodeLZ4Prefix(block, prefix)
	if n == 0 {
		return nil, err
	}

	return prefix[:n], fmt.Errorf("%w: mozlz4 block decoded %d of %d bytes: %w", errs.ErrTruncatedInput, n, size, err)
}

// ParseMozLZ4Header returns the decompressed size recorded in a mozLz4 header.
func ParseMozLZ4Header(data []byte) (int, error) {
	if len(data) < MozLZ4HeaderSize {
		return 0, fmt.Errorf("%w: mozlz4 header needs %d bytes, got %d", errs.ErrInvalidHeaderSize, MozLZ4HeaderSize, len(data))
	}
	if !bytes.Equal(data[:len(MozLZ4Magic)], []byte(MozLZ4Magic)) {
		return 0, fmt.Errorf("%w: %q is not a mozlz4 magic", errs.ErrInvalidMagicNumber, data[:len(MozLZ4Magic)])
	}

	size := binary.LittleEndian.Uint32(data[len(MozLZ4Magic):MozLZ4HeaderSize])
	if size > MaxMozLZ4Size {
		return 0, fmt.Errorf("%w: decompressed size %d exceeds %d", errs.ErrInvalidHeaderSize, size, MaxMozLZ4Size)
	}

	return int(size), nil
}
