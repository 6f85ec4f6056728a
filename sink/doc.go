// Package sink writes extracted rows.
//
// Every Writer is created with a fixed column list. Rows arrive as column
// maps; a column missing from a row renders as an empty value, and keys that
// are not columns are ignored. Rows are written in arrival order.
//
// # Formats
//
//   - CSV: one header line, then one line per row (the default layout).
//   - JSONL: one JSON object per line with keys in column order.
//   - Table: an aligned terminal table rendered when the writer is closed.
//   - SQLite: a "rows" table with one TEXT column per output column plus a
//     "source" column naming the input document.
//
// NewFile picks the format writer for a path. When the path ends in a
// compression extension (".gz", ".zst", ".jsonlz4", ...) the output is
// buffered and compressed with the matching codec on Close.
package sink
