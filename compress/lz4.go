package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// maxLZ4BlockSize bounds decompression of blocks whose size is not stored.
const maxLZ4BlockSize = 128 * 1024 * 1024

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor implements raw LZ4 blocks without a frame header.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates an LZ4 block codec.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses data into a single LZ4 block.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return compressLZ4Block(data, nil)
}

// Decompress decodes a single LZ4 block.
//
// The block does not record its decompressed size, so the output buffer
// starts at four times the input and doubles on ErrInvalidSourceShortBuffer
// up to 128MiB.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	for bufSize := len(data) * 4; bufSize <= maxLZ4BlockSize; bufSize *= 2 {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err == nil {
			return buf[:n], nil
		}
		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
	}

	return nil, fmt.Errorf("lz4 decompression failed: %w", lz4.ErrInvalidSourceShortBuffer)
}

// compressLZ4Block appends the LZ4 block of data to dst.
func compressLZ4Block(data, dst []byte) ([]byte, error) {
	off := len(dst)
	bound := lz4.CompressBlockBound(len(data))
	if cap(dst)-off < bound {
		grown := make([]byte, off, off+bound)
		copy(grown, dst)
		dst = grown
	}

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[off:off+bound])
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	return dst[:off+n], nil
}

// decodeLZ4Prefix decodes as much of a damaged or cut-off LZ4 block into dst
// as can be trusted and returns the number of bytes written.
//
// Decoding stops at the end of src, at a match that points before the start
// of the output, or when dst is full. Literals cut by the end of src are kept.
func decodeLZ4Prefix(src, dst []byte) int {
	s, d := 0, 0
	for s < len(src) && d < len(dst) {
		token := src[s]
		s++

		litLen, ok := lz4Length(src, &s, int(token>>4))
		if !ok {
			return d
		}
		n := min(litLen, len(src)-s, len(dst)-d)
		copy(dst[d:], src[s:s+n])
		s += n
		d += n
		if n < litLen || s+2 > len(src) {
			return d
		}

		offset := int(src[s]) | int(src[s+1])<<8
		s += 2
		if offset == 0 || offset > d {
			return d
		}

		matchLen, ok := lz4Length(src, &s, int(token&0x0f))
		if !ok {
			return d
		}
		matchLen += 4
		for i := 0; i < matchLen && d < len(dst); i++ {
			dst[d] = dst[d-offset]
			d++
		}
	}

	return d
}

// lz4Length reads the extension bytes of a 4-bit length field starting at
// src[*s]. It reports false when src ends inside the extension.
func lz4Length(src []byte, s *int, n int) (int, bool) {
	if n != 0x0f {
		return n, true
	}
	for {
		if *s >= len(src) {
			return 0, false
		}
		b := src[*s]
		*s++
		n += int(b)
		if b != 0xff {
			return n, true
		}
	}
}

// decompressLZ4Block decodes a block whose decompressed size is known.
func decompressLZ4Block(data []byte, size int) ([]byte, error) {
	buf := make([]byte, size)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	if n != size {
		return nil, fmt.Errorf("lz4 decompression failed: got %d bytes, header says %d", n, size)
	}

	return buf, nil
}
