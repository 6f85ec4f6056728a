package compress

import (
	"fmt"

	"github.com/arloliu/carve/errs"
	"github.com/arloliu/carve/format"
)

// Compressor compresses a whole payload in one call.
//
// The returned slice is owned by the caller and the input is not modified.
// Empty input yields nil.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor of the same algorithm.
//
// Corrupted input, or input written by another algorithm, returns an error.
// Codecs that can tell where a cut-off stream stops (mozLz4, gzip) return
// the decoded prefix along with an error wrapping errs.ErrTruncatedInput.
// Implementations are safe for concurrent use.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec returns a new Codec for compressionType.
//
// Parameters:
//   - compressionType: Algorithm to use
//   - target: Description of what the codec is for, used in error messages
//
// Returns:
//   - Codec: Codec instance
//   - error: ErrUnsupportedCompression for unknown types
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	case format.CompressionMozLZ4:
		return NewMozLZ4Compressor(), nil
	case format.CompressionGzip:
		return NewGzipCompressor(), nil
	default:
		return nil, fmt.Errorf("%w: %s for %s", errs.ErrUnsupportedCompression, compressionType, target)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone:   NewNoOpCompressor(),
	format.CompressionZstd:   NewZstdCompressor(),
	format.CompressionS2:     NewS2Compressor(),
	format.CompressionLZ4:    NewLZ4Compressor(),
	format.CompressionMozLZ4: NewMozLZ4Compressor(),
	format.CompressionGzip:   NewGzipCompressor(),
}

// GetCodec returns the shared built-in Codec for compressionType.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compressionType)
}
