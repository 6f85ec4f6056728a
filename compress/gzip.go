package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/arloliu/carve/errs"
	"github.com/klauspost/compress/gzip"
)

var gzipWriterPool = sync.Pool{
	New: func() any {
		w, _ := gzip.NewWriterLevel(nil, gzip.DefaultCompression)
		return w
	},
}

// GzipCompressor implements gzip streams.
type GzipCompressor struct{}

var _ Codec = (*GzipCompressor)(nil)

// NewGzipCompressor creates a gzip codec.
func NewGzipCompressor() GzipCompressor {
	return GzipCompressor{}
}

// Compress writes data as a single gzip member with a pooled writer.
func (c GzipCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	w, _ := gzipWriterPool.Get().(*gzip.Writer)
	defer gzipWriterPool.Put(w)
	w.Reset(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("gzip compression failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip compression failed: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress reads all gzip members in data. A stream that ends early
// returns what was decoded before the cut with errs.ErrTruncatedInput.
func (c GzipCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip decompression failed: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, io.ErrUnexpectedEOF) && len(out) > 0:
		return out, fmt.Errorf("%w: gzip stream cut after %d bytes: %w", errs.ErrTruncatedInput, len(out), err)
	default:
		return nil, fmt.Errorf("gzip decompression failed: %w", err)
	}
}
