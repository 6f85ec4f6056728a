package sink

import (
	"encoding/json"
	"io"

	"github.com/arloliu/carve/errs"
	"github.com/arloliu/carve/internal/pool"
)

// JSONLWriter writes one JSON object per line. Keys follow column order.
type JSONLWriter struct {
	w       io.Writer
	columns []string
	closed  bool
}

var _ Writer = (*JSONLWriter)(nil)

// NewJSONLWriter creates a JSONLWriter.
func NewJSONLWriter(w io.Writer, columns []string) *JSONLWriter {
	return &JSONLWriter{w: w, columns: columns}
}

// WriteRow renders the row into a pooled buffer and writes it in one call.
func (j *JSONLWriter) WriteRow(row map[string]string) error {
	if j.closed {
		return errs.ErrSinkClosed
	}

	buf := pool.GetRowBuffer()
	defer pool.PutRowBuffer(buf)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	_ = buf.WriteByte('{')
	for i, col := range j.columns {
		if i > 0 {
			_ = buf.WriteByte(',')
		}
		if err := appendString(enc, buf, col); err != nil {
			return err
		}
		_ = buf.WriteByte(':')
		if err := appendString(enc, buf, row[col]); err != nil {
			return err
		}
	}
	_, _ = buf.WriteString("}\n")

	_, err := buf.WriteTo(j.w)

	return err
}

// appendString encodes s as a JSON string without the encoder's newline.
func appendString(enc *json.Encoder, buf *pool.ByteBuffer, s string) error {
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.B = buf.B[:len(buf.B)-1]

	return nil
}

// Close marks the writer closed. Nothing is buffered.
func (j *JSONLWriter) Close() error {
	if j.closed {
		return errs.ErrSinkClosed
	}
	j.closed = true

	return nil
}
