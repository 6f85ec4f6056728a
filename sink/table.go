package sink

import (
	"io"

	"github.com/arloliu/carve/errs"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// DefaultTableCellWidth caps the rendered width of a table cell. Longer
// values are trimmed.
const DefaultTableCellWidth = 60

// TableWriter collects rows and renders an aligned table on Close.
type TableWriter struct {
	out     io.Writer
	t       table.Writer
	columns []string
	closed  bool
}

var _ Writer = (*TableWriter)(nil)

// NewTableWriter creates a TableWriter that renders to w.
func NewTableWriter(w io.Writer, columns []string) *TableWriter {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col
		configs[i] = table.ColumnConfig{
			Number:           i + 1,
			WidthMax:         DefaultTableCellWidth,
			WidthMaxEnforcer: text.Trim,
		}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	return &TableWriter{out: w, t: t, columns: columns}
}

// WriteRow appends a table row.
func (tw *TableWriter) WriteRow(row map[string]string) error {
	if tw.closed {
		return errs.ErrSinkClosed
	}

	r := make(table.Row, len(tw.columns))
	for i, col := range tw.columns {
		r[i] = row[col]
	}
	tw.t.AppendRow(r)

	return nil
}

// Len returns the number of rows collected so far.
func (tw *TableWriter) Len() int {
	return tw.t.Length()
}

// Close renders the table.
func (tw *TableWriter) Close() error {
	if tw.closed {
		return errs.ErrSinkClosed
	}
	tw.closed = true

	_, err := io.WriteString(tw.out, tw.t.Render()+"\n")

	return err
}
