package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/carve/compress"
	"github.com/arloliu/carve/errs"
	"github.com/arloliu/carve/format"
	"github.com/arloliu/carve/internal/options"
	"github.com/arloliu/carve/internal/pool"
)

// Stdout is the output path that writes standard output.
const Stdout = "-"

type fileConfig struct {
	appendMode bool
	source     string
}

// FileOption configures NewFile.
type FileOption = options.Option[*fileConfig]

// WithAppend appends to an existing output instead of replacing it. CSV
// output skips the header when the file already has content.
func WithAppend(appendMode bool) FileOption {
	return options.NoError(func(c *fileConfig) {
		c.appendMode = appendMode
	})
}

// WithSource sets the value of the SQLite source column.
func WithSource(name string) FileOption {
	return options.NoError(func(c *fileConfig) {
		c.source = name
	})
}

// NewFile creates a Writer for the output at path. Stdout writes standard
// output.
//
// A compression extension on path (see compress.StripExtension) buffers the
// whole output and compresses it on Close. Compressed output cannot be
// appended to, and SQLite output is never compressed or streamed.
//
// Returns:
//   - Writer: Writer owning the output file
//   - error: ErrUnsupportedFormat for impossible combinations, or file errors
func NewFile(ctx context.Context, path string, f format.OutputFormat, columns []string, opts ...FileOption) (Writer, error) {
	cfg := &fileConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	_, compression := compress.StripExtension(path)
	if path == Stdout {
		compression = format.CompressionNone
	}

	if f == format.OutputSQLite {
		if path == Stdout || compression != format.CompressionNone {
			return nil, fmt.Errorf("%w: sqlite output needs a plain file path, got %q", errs.ErrUnsupportedFormat, path)
		}

		w, err := NewSQLiteWriter(ctx, path, columns, cfg.source, cfg.appendMode)
		if err != nil {
			return nil, err
		}

		return w, nil
	}

	if compression != format.CompressionNone && cfg.appendMode {
		return nil, fmt.Errorf("%w: cannot append to compressed output %q", errs.ErrUnsupportedFormat, path)
	}

	out, existing, err := openOutput(path, cfg.appendMode)
	if err != nil {
		return nil, err
	}

	fw := &fileWriter{out: out}
	var dst io.Writer = out
	if compression != format.CompressionNone {
		if fw.codec, err = compress.GetCodec(compression); err != nil {
			return nil, errors.Join(err, out.Close())
		}
		fw.buf = pool.GetOutputBuffer()
		dst = fw.buf
	}

	if fw.Writer, err = New(dst, f, columns, !existing); err != nil {
		fw.release()
		return nil, errors.Join(err, out.Close())
	}

	return fw, nil
}

// openOutput opens path for writing and reports whether it already had content.
func openOutput(path string, appendMode bool) (io.WriteCloser, bool, error) {
	if path == Stdout {
		return nopCloser{os.Stdout}, false, nil
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("open output: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		return nil, false, errors.Join(fmt.Errorf("stat output: %w", err), f.Close())
	}

	return f, appendMode && st.Size() > 0, nil
}

type fileWriter struct {
	Writer

	out    io.WriteCloser
	codec  compress.Codec
	buf    *pool.ByteBuffer
	closed bool
}

func (fw *fileWriter) Close() error {
	if fw.closed {
		return errs.ErrSinkClosed
	}
	fw.closed = true

	err := fw.Writer.Close()
	if err == nil && fw.buf != nil {
		err = fw.flushCompressed()
	}

	fw.release()

	return errors.Join(err, fw.out.Close())
}

func (fw *fileWriter) flushCompressed() error {
	data, err := fw.codec.Compress(fw.buf.Bytes())
	if err != nil {
		return fmt.Errorf("compress output: %w", err)
	}
	if _, err := fw.out.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}

func (fw *fileWriter) release() {
	if fw.buf != nil {
		pool.PutOutputBuffer(fw.buf)
		fw.buf = nil
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
