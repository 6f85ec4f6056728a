package extract

import (
	"github.com/arloliu/carve/record"
)

// Row is one output row: the recognized fields of a record, its container
// path and the document timestamp.
type Row struct {
	LastUpdated string
	Fields      record.Fields
	Path        record.Path
	// Offset is the record's start offset in the document.
	Offset int
}

// Value returns the value of one column. Unknown columns and missing fields
// are "".
func (r Row) Value(column, sep string) string {
	switch column {
	case ColumnLastUpdated:
		return r.LastUpdated
	case ColumnPath:
		return r.Path.String(sep)
	default:
		return r.Fields.Get(column)
	}
}

// Map returns the row as a map over columns with the path joined by sep.
//
// Only the given columns appear. A field column the record lacks is left
// out; lastUpdated and Path are always present when requested.
func (r Row) Map(columns []string, sep string) map[string]string {
	m := make(map[string]string, len(columns))
	for _, col := range columns {
		switch col {
		case ColumnLastUpdated, ColumnPath:
			m[col] = r.Value(col, sep)
		default:
			if v, ok := r.Fields[col]; ok {
				m[col] = v
			}
		}
	}

	return m
}

// Values returns the row's values in column order.
func (r Row) Values(columns []string, sep string) []string {
	values := make([]string, len(columns))
	r.fill(values, columns, sep)

	return values
}

func (r Row) fill(dst []string, columns []string, sep string) {
	for i, col := range columns {
		dst[i] = r.Value(col, sep)
	}
}
