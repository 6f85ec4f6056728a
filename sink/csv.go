package sink

import (
	"encoding/csv"
	"io"

	"github.com/arloliu/carve/errs"
)

// CSVWriter writes rows as comma-separated values.
type CSVWriter struct {
	w       *csv.Writer
	columns []string
	header  bool
	record  []string
	closed  bool
}

var _ Writer = (*CSVWriter)(nil)

// NewCSVWriter creates a CSVWriter. With header set, the column names are
// written before the first row, or on Close when no row arrives.
func NewCSVWriter(w io.Writer, columns []string, header bool) *CSVWriter {
	return &CSVWriter{
		w:       csv.NewWriter(w),
		columns: columns,
		header:  header,
		record:  make([]string, 0, len(columns)),
	}
}

// WriteRow writes one line.
func (c *CSVWriter) WriteRow(row map[string]string) error {
	if c.closed {
		return errs.ErrSinkClosed
	}
	if err := c.writeHeader(); err != nil {
		return err
	}

	c.record = values(c.record, c.columns, row)

	return c.w.Write(c.record)
}

func (c *CSVWriter) writeHeader() error {
	if !c.header {
		return nil
	}
	c.header = false

	return c.w.Write(c.columns)
}

// Close flushes buffered output.
func (c *CSVWriter) Close() error {
	if c.closed {
		return errs.ErrSinkClosed
	}
	c.closed = true

	if err := c.writeHeader(); err != nil {
		return err
	}
	c.w.Flush()

	return c.w.Error()
}
