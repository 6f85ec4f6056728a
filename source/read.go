package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/carve/compress"
	"github.com/arloliu/carve/errs"
	"github.com/arloliu/carve/format"
)

// Stdin is the input name that reads standard input.
const Stdin = "-"

// Document is a fully loaded, decompressed input.
type Document struct {
	Name        string
	Data        []byte
	Compression format.CompressionType
	// RawSize is the size of the input before decompression.
	RawSize int
	// Truncated is set when the compressed input ended early and Data holds
	// only the part decoded before the cut.
	Truncated bool
}

// Read loads and decompresses the input called name. Stdin reads os.Stdin.
func Read(ctx context.Context, name string) (Document, error) {
	if name == Stdin {
		return ReadFrom(ctx, name, os.Stdin)
	}

	f, err := os.Open(name)
	if err != nil {
		return Document{}, unavailable(name, err)
	}
	defer f.Close()

	return ReadFrom(ctx, name, f)
}

// ReadFrom loads and decompresses a document from r. name is used for
// compression detection and error messages only.
func ReadFrom(ctx context.Context, name string, r io.Reader) (Document, error) {
	raw, err := io.ReadAll(&ctxReader{ctx: ctx, r: r})
	if err != nil {
		return Document{}, unavailable(name, err)
	}

	return Decode(name, raw)
}

// Decode decompresses raw input bytes.
//
// A compressed input that was cut off still produces a Document holding the
// decoded prefix, with Truncated set. It fails only when nothing could be
// decoded.
func Decode(name string, raw []byte) (Document, error) {
	typ := compress.Detect(raw, name)
	codec, err := compress.GetCodec(typ)
	if err != nil {
		return Document{}, unavailable(name, err)
	}

	doc := Document{Name: name, Compression: typ, RawSize: len(raw)}

	doc.Data, err = codec.Decompress(raw)
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrTruncatedInput) && len(doc.Data) > 0:
		doc.Truncated = true
	default:
		return Document{}, unavailable(name, fmt.Errorf("%s input: %w", typ, err))
	}

	return doc, nil
}

func unavailable(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", errs.ErrSourceUnavailable, name, err)
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context //nolint:containedctx
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}
