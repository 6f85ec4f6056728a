package compress

// ZstdCompressor implements Zstandard frames.
//
// The default build uses the pure Go klauspost/compress/zstd encoder and
// decoder from pools. Building with the cgo_zstd tag switches to the
// cgo-backed valyala/gozstd.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstandard codec.
//
// Example:
//
//	codec := NewZstdCompressor()
//	compressed, err := codec.Compress(rows)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
