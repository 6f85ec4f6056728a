package sink

import (
	"fmt"
	"io"

	"github.com/arloliu/carve/errs"
	"github.com/arloliu/carve/format"
)

// Writer receives rows. The extract package's Sink interface is a subset.
type Writer interface {
	WriteRow(row map[string]string) error
	Close() error
}

// New creates a streaming Writer over w.
//
// header controls whether CSV output starts with a header line. SQLite is not
// a stream format; use NewSQLiteWriter or NewFile for it.
//
// Returns:
//   - Writer: Format writer; closing it does not close w
//   - error: ErrUnsupportedFormat for SQLite or unknown formats
func New(w io.Writer, f format.OutputFormat, columns []string, header bool) (Writer, error) {
	switch f {
	case format.OutputCSV:
		return NewCSVWriter(w, columns, header), nil
	case format.OutputJSONL:
		return NewJSONLWriter(w, columns), nil
	case format.OutputTable:
		return NewTableWriter(w, columns), nil
	default:
		return nil, fmt.Errorf("%w: %s cannot be streamed", errs.ErrUnsupportedFormat, f)
	}
}

// values copies row into dst in column order.
func values(dst []string, columns []string, row map[string]string) []string {
	dst = dst[:0]
	for _, col := range columns {
		dst = append(dst, row[col])
	}

	return dst
}
