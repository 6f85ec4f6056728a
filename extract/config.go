package extract

import (
	"fmt"
	"slices"
	"time"

	"github.com/arloliu/carve/errs"
	"github.com/arloliu/carve/record"
	"github.com/arloliu/carve/scan"
)

// Computed columns. Every other column names a recognized field.
const (
	ColumnLastUpdated = "lastUpdated"
	ColumnPath        = "Path"
)

// Defaults for Firefox session documents.
const (
	DefaultPathSeparator   = "/"
	DefaultTimestampMarker = `"lastUpdate":`
	DefaultTimeLayout      = "02-Jan-2006 15:04:05"
	DefaultProgressEvery   = 1000
)

// DefaultColumns is the output column order expected by consumers of the
// CSV layout.
var DefaultColumns = []string{
	ColumnLastUpdated, "url", "title", "ID", "referrer", "scroll", "subframe", ColumnPath,
}

// Policy decides what happens to a record whose end cannot be found.
type Policy uint8

const (
	// SkipUnterminated logs and counts the record, then continues.
	SkipUnterminated Policy = iota
	// AbortOnUnterminated stops the run with an error.
	AbortOnUnterminated
)

func (p Policy) String() string {
	switch p {
	case SkipUnterminated:
		return "skip"
	case AbortOnUnterminated:
		return "abort"
	default:
		return "unknown"
	}
}

// Config holds all extraction settings.
type Config struct {
	Marker            string
	RecordBrackets    scan.Brackets
	PathBrackets      scan.Brackets
	Quotes            string
	Escape            byte
	Fields            []string
	Columns           []string
	PathSeparator     string
	TimestampMarker   string
	TimeLayout        string
	Location          *time.Location
	BoundToNextMarker bool
	Policy            Policy
	Dedup             bool
	ProgressEvery     int
}

// DefaultConfig returns the settings for Firefox session documents.
func DefaultConfig() Config {
	return Config{
		Marker:          record.DefaultMarker,
		RecordBrackets:  record.RecordBrackets,
		PathBrackets:    record.ContainerBrackets,
		Quotes:          record.DefaultQuotes,
		Escape:          record.DefaultEscape,
		Fields:          slices.Clone(record.DefaultFields),
		Columns:         slices.Clone(DefaultColumns),
		PathSeparator:   DefaultPathSeparator,
		TimestampMarker: DefaultTimestampMarker,
		TimeLayout:      DefaultTimeLayout,
		Location:        time.Local,
		Policy:          SkipUnterminated,
		ProgressEvery:   DefaultProgressEvery,
	}
}

// Validate checks settings that the record components do not check
// themselves.
func (c *Config) Validate() error {
	if len(c.Columns) == 0 {
		return fmt.Errorf("%w: empty column list", errs.ErrInvalidColumns)
	}

	seen := make(map[string]struct{}, len(c.Columns))
	for _, col := range c.Columns {
		if _, dup := seen[col]; dup {
			return fmt.Errorf("%w: duplicate column %q", errs.ErrInvalidColumns, col)
		}
		seen[col] = struct{}{}

		if col == ColumnLastUpdated || col == ColumnPath {
			continue
		}
		if !slices.Contains(c.Fields, col) {
			return fmt.Errorf("%w: column %q is not a recognized field", errs.ErrInvalidColumns, col)
		}
	}

	if c.ProgressEvery < 0 {
		return fmt.Errorf("progress interval must not be negative: %d", c.ProgressEvery)
	}

	return nil
}

func (c *Config) locatorConfig() record.LocatorConfig {
	return record.LocatorConfig{
		Marker:            c.Marker,
		Brackets:          c.RecordBrackets,
		Quotes:            c.Quotes,
		Escape:            c.Escape,
		BoundToNextMarker: c.BoundToNextMarker,
	}
}

func (c *Config) pathConfig() record.PathConfig {
	return record.PathConfig{Brackets: c.PathBrackets, Quotes: c.Quotes, Escape: c.Escape}
}

func (c *Config) tokenizerConfig() record.TokenizerConfig {
	return record.TokenizerConfig{Fields: c.Fields, Quotes: c.Quotes, Escape: c.Escape}
}
