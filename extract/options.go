package extract

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/arloliu/carve/internal/options"
)

// ProgressFunc receives the number of processed markers and the total.
type ProgressFunc func(done, total int)

// Option configures an Extractor.
type Option = options.Option[*Extractor]

// WithConfig replaces the whole configuration. Options applied after it
// override individual settings.
func WithConfig(cfg Config) Option {
	return options.NoError(func(e *Extractor) {
		e.cfg = cfg
	})
}

// WithMarker sets the literal that starts a record.
func WithMarker(marker string) Option {
	return options.New(func(e *Extractor) error {
		if marker == "" {
			return fmt.Errorf("marker must not be empty")
		}
		e.cfg.Marker = marker

		return nil
	})
}

// WithFields sets the recognized field names.
func WithFields(fields ...string) Option {
	return options.NoError(func(e *Extractor) {
		e.cfg.Fields = slices.Clone(fields)
	})
}

// WithColumns sets the output column order.
func WithColumns(columns ...string) Option {
	return options.NoError(func(e *Extractor) {
		e.cfg.Columns = slices.Clone(columns)
	})
}

// WithPathSeparator sets the string placed between path segments.
func WithPathSeparator(sep string) Option {
	return options.NoError(func(e *Extractor) {
		e.cfg.PathSeparator = sep
	})
}

// WithTimestampMarker sets the literal that precedes the document timestamp.
// An empty marker disables timestamp detection.
func WithTimestampMarker(marker string) Option {
	return options.NoError(func(e *Extractor) {
		e.cfg.TimestampMarker = marker
	})
}

// WithTimeFormat sets the layout and location used to render the document
// timestamp. A nil location means time.Local.
func WithTimeFormat(layout string, loc *time.Location) Option {
	return options.NoError(func(e *Extractor) {
		e.cfg.TimeLayout = layout
		e.cfg.Location = loc
	})
}

// WithBoundToNextMarker limits each record scan to the next marker.
func WithBoundToNextMarker(enabled bool) Option {
	return options.NoError(func(e *Extractor) {
		e.cfg.BoundToNextMarker = enabled
	})
}

// WithPolicy sets the unterminated-record policy.
func WithPolicy(p Policy) Option {
	return options.New(func(e *Extractor) error {
		switch p {
		case SkipUnterminated, AbortOnUnterminated:
			e.cfg.Policy = p
			return nil
		default:
			return fmt.Errorf("invalid policy: %d", p)
		}
	})
}

// WithDedup drops rows identical to an earlier row of the same run.
func WithDedup(enabled bool) Option {
	return options.NoError(func(e *Extractor) {
		e.cfg.Dedup = enabled
	})
}

// WithProgress calls fn after every `every` markers and once at the end of a
// run. An interval of zero only reports at the end.
func WithProgress(every int, fn ProgressFunc) Option {
	return options.New(func(e *Extractor) error {
		if every < 0 {
			return fmt.Errorf("progress interval must not be negative: %d", every)
		}
		e.cfg.ProgressEvery = every
		e.progress = fn

		return nil
	})
}

// WithLogger sets the logger used for skipped records and run summaries.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	})
}
