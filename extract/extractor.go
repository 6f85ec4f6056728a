package extract

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/arloliu/carve/internal/collision"
	"github.com/arloliu/carve/internal/options"
	"github.com/arloliu/carve/internal/pool"
	"github.com/arloliu/carve/record"
)

// Sink receives rows as maps keyed by the configured output columns.
// sink.Writer implements it.
type Sink interface {
	WriteRow(row map[string]string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(row map[string]string) error

// WriteRow calls f(row).
func (f SinkFunc) WriteRow(row map[string]string) error { return f(row) }

// Extractor turns documents into rows. It is immutable after New and can run
// over several documents concurrently.
type Extractor struct {
	cfg      Config
	logger   *slog.Logger
	progress ProgressFunc

	locator   *record.Locator
	paths     *record.PathReconstructor
	tokenizer *record.Tokenizer
}

// New creates an Extractor with DefaultConfig modified by opts.
//
// Returns:
//   - *Extractor: Ready to use extractor
//   - error: Option errors, ErrInvalidColumns, ErrInvalidMarker, ErrInvalidBrackets
//     or ErrInvalidQuotes
func New(opts ...Option) (*Extractor, error) {
	e := &Extractor{
		cfg:    DefaultConfig(),
		logger: slog.New(slog.DiscardHandler),
	}
	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	var err error
	if e.locator, err = record.NewLocator(e.cfg.locatorConfig()); err != nil {
		return nil, fmt.Errorf("record locator: %w", err)
	}
	if e.paths, err = record.NewPathReconstructor(e.cfg.pathConfig()); err != nil {
		return nil, fmt.Errorf("path reconstructor: %w", err)
	}
	if e.tokenizer, err = record.NewTokenizer(e.cfg.tokenizerConfig()); err != nil {
		return nil, fmt.Errorf("field tokenizer: %w", err)
	}

	return e, nil
}

// Config returns a copy of the effective configuration.
func (e *Extractor) Config() Config {
	return e.cfg
}

// Columns returns the output column order.
func (e *Extractor) Columns() []string {
	return e.cfg.Columns
}

// DocumentTimestamp returns the raw document timestamp: the value after the
// last occurrence of the timestamp marker.
func (e *Extractor) DocumentTimestamp(blob []byte) (int64, bool) {
	return FindTimestamp(blob, e.cfg.TimestampMarker)
}

// FormattedTimestamp returns the document timestamp rendered with the
// configured layout, or "" when the document has none.
func (e *Extractor) FormattedTimestamp(blob []byte) string {
	ms, ok := e.DocumentTimestamp(blob)
	if !ok {
		return ""
	}

	return FormatTimestamp(ms, e.cfg.TimeLayout, e.cfg.Location)
}

// All returns a lazy sequence of the rows in blob, in document order.
//
// An unterminated record yields a zero Row and an error wrapping
// errs.ErrUnterminatedRecord; the sequence continues after it. De-duplication
// and the failure policy are applied by Run, not here.
func (e *Extractor) All(blob []byte) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		stamp := e.FormattedTimestamp(blob)
		for rec, err := range e.locator.Locate(blob) {
			if err != nil {
				if !yield(Row{Offset: rec.Start}, err) {
					return
				}
				continue
			}

			row, _ := e.row(blob, rec, stamp)
			if !yield(row, nil) {
				return
			}
		}
	}
}

// Run extracts every row of blob into sink.
//
// Cancellation of ctx is checked between records. On error the returned Stats
// cover the records processed so far.
func (e *Extractor) Run(ctx context.Context, blob []byte, sink Sink) (Stats, error) {
	r := &run{
		ex:    e,
		ctx:   ctx,
		blob:  blob,
		sink:  sink,
		stamp: e.FormattedTimestamp(blob),
	}
	r.stats.Markers = e.locator.Count(blob)
	if e.cfg.Dedup {
		r.seen = collision.NewTracker()
	}

	e.logger.Debug("extraction started", slog.Int("bytes", len(blob)), slog.Int("markers", r.stats.Markers))

	err := r.exec()
	if err != nil {
		e.logger.Error("extraction stopped", slog.Any("stats", r.stats), slog.Any("error", err))
		return r.stats, err
	}

	if r.seen != nil && r.seen.HasCollision() {
		e.logger.Debug("row fingerprint collisions", slog.Int("count", r.seen.Collisions()))
	}
	e.logger.Debug("extraction finished", slog.Any("stats", r.stats))

	return r.stats, nil
}

// row composes the output row of a resolved record.
func (e *Extractor) row(blob []byte, rec record.Record, stamp string) (Row, int) {
	fields, ts := e.tokenizer.TokenizeStats(rec.Body(blob))

	return Row{
		LastUpdated: stamp,
		Fields:      fields,
		Path:        e.paths.Reconstruct(blob, rec.Start),
		Offset:      rec.Start,
	}, ts.Malformed
}

// run holds the mutable state of one Run call.
type run struct {
	ex    *Extractor
	ctx   context.Context //nolint:containedctx
	blob  []byte
	sink  Sink
	stamp string
	seen  *collision.Tracker
	stats Stats
	done  int
}

func (r *run) exec() error {
	e := r.ex
	for rec, locateErr := range e.locator.Locate(r.blob) {
		if err := r.ctx.Err(); err != nil {
			return err
		}

		r.done++
		if err := r.handle(rec, locateErr); err != nil {
			return err
		}

		if e.progress != nil && e.cfg.ProgressEvery > 0 && r.done%e.cfg.ProgressEvery == 0 {
			e.progress(r.done, r.stats.Markers)
		}
	}

	if e.progress != nil {
		e.progress(r.done, r.stats.Markers)
	}

	return nil
}

func (r *run) handle(rec record.Record, locateErr error) error {
	e := r.ex
	if locateErr != nil {
		if e.cfg.Policy == AbortOnUnterminated {
			return locateErr
		}
		r.stats.Skipped++
		e.logger.Warn("skipping unterminated record", slog.Int("offset", rec.Start), slog.Any("error", locateErr))

		return nil
	}

	row, malformed := e.row(r.blob, rec, r.stamp)
	r.stats.MalformedFields += malformed

	if r.seen != nil && !r.isNew(row) {
		r.stats.Duplicates++
		return nil
	}

	if err := r.sink.WriteRow(row.Map(e.cfg.Columns, e.cfg.PathSeparator)); err != nil {
		return fmt.Errorf("write row for record at offset %d: %w", rec.Start, err)
	}
	r.stats.Rows++

	return nil
}

func (r *run) isNew(row Row) bool {
	values, cleanup := pool.GetStringSlice(len(r.ex.cfg.Columns))
	defer cleanup()
	row.fill(values, r.ex.cfg.Columns, r.ex.cfg.PathSeparator)

	return r.seen.Track(values)
}
