package sink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/carve/errs"

	_ "modernc.org/sqlite"
)

// SQLiteTable is the table rows are inserted into.
const SQLiteTable = "rows"

// SQLiteSourceColumn names the input document of each row.
const SQLiteSourceColumn = "source"

// SQLiteWriter inserts rows into a SQLite database inside one transaction,
// committed on Close.
type SQLiteWriter struct {
	db      *sql.DB
	tx      *sql.Tx
	stmt    *sql.Stmt
	columns []string
	source  string
	withSrc bool
	args    []any
	closed  bool
}

var _ Writer = (*SQLiteWriter)(nil)

// NewSQLiteWriter opens (or creates) the database at path.
//
// Without appendMode an existing rows table is dropped first. source is
// stored in the source column of every row, unless source is itself one of
// the output columns.
//
// Returns:
//   - *SQLiteWriter: Writer holding an open transaction
//   - error: Database open, schema, or transaction errors
func NewSQLiteWriter(ctx context.Context, path string, columns []string, source string, appendMode bool) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	w := &SQLiteWriter{
		db:      db,
		columns: columns,
		source:  source,
		withSrc: !slices.Contains(columns, SQLiteSourceColumn),
	}
	if err := w.init(ctx, appendMode); err != nil {
		return nil, errors.Join(err, db.Close())
	}

	return w, nil
}

func (w *SQLiteWriter) init(ctx context.Context, appendMode bool) error {
	cols := w.columns
	if w.withSrc {
		cols = append(slices.Clone(cols), SQLiteSourceColumn)
	}

	if !appendMode {
		if _, err := w.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(SQLiteTable)); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}

	defs := make([]string, len(cols))
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = quoteIdent(col)
		defs[i] = names[i] + " TEXT"
	}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(SQLiteTable), strings.Join(defs, ", "))
	if _, err := w.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(SQLiteTable), strings.Join(names, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return errors.Join(fmt.Errorf("prepare insert: %w", err), tx.Rollback())
	}

	w.tx = tx
	w.stmt = stmt
	w.args = make([]any, len(cols))

	return nil
}

// SetSource changes the source value stored with the following rows.
func (w *SQLiteWriter) SetSource(name string) {
	w.source = name
}

// WriteRow inserts one row.
func (w *SQLiteWriter) WriteRow(row map[string]string) error {
	if w.closed {
		return errs.ErrSinkClosed
	}

	for i, col := range w.columns {
		w.args[i] = row[col]
	}
	if w.withSrc {
		w.args[len(w.columns)] = w.source
	}

	if _, err := w.stmt.Exec(w.args...); err != nil {
		return fmt.Errorf("insert row: %w", err)
	}

	return nil
}

// Close commits the transaction and closes the database.
func (w *SQLiteWriter) Close() error {
	if w.closed {
		return errs.ErrSinkClosed
	}
	w.closed = true

	err := w.stmt.Close()
	if err == nil {
		err = w.tx.Commit()
	} else {
		err = errors.Join(err, w.tx.Rollback())
	}
	if err != nil {
		err = fmt.Errorf("commit rows: %w", err)
	}

	return errors.Join(err, w.db.Close())
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
