package record

import (
	"bytes"
	"fmt"
	"iter"

	"github.com/arloliu/carve/errs"
	"github.com/arloliu/carve/scan"
)

// Defaults for Firefox session documents.
const (
	DefaultMarker = `{"url":`
	DefaultQuotes = `"`
	DefaultEscape = '\\'
)

var (
	// RecordBrackets delimit a record.
	RecordBrackets = scan.Brackets{Open: "{", Close: "}"}
	// ContainerBrackets delimit the named arrays that enclose records.
	ContainerBrackets = scan.Brackets{Open: "[", Close: "]"}
)

// LocatorConfig configures a Locator.
type LocatorConfig struct {
	// Marker is the literal that starts a record. Its first byte must be an
	// opening record bracket.
	Marker string
	// Brackets is the record bracket pair.
	Brackets scan.Brackets
	// Quotes is the quote character set.
	Quotes string
	// Escape is the quote escape byte, 0 to disable.
	Escape byte
	// BoundToNextMarker limits each forward scan to the next marker occurrence.
	// Records that contain nested records then fail to resolve.
	BoundToNextMarker bool
}

// DefaultLocatorConfig returns the configuration for Firefox session documents.
func DefaultLocatorConfig() LocatorConfig {
	return LocatorConfig{
		Marker:   DefaultMarker,
		Brackets: RecordBrackets,
		Quotes:   DefaultQuotes,
		Escape:   DefaultEscape,
	}
}

// Locator finds records by marker search and forward depth matching.
type Locator struct {
	marker      []byte
	scanner     *scan.Scanner
	boundToNext bool
}

// NewLocator creates a Locator.
//
// Returns:
//   - *Locator: Stateless locator, safe for concurrent use
//   - error: ErrInvalidMarker if the marker is empty or does not start with an
//     opening record bracket; scanner configuration errors
func NewLocator(cfg LocatorConfig) (*Locator, error) {
	s, err := scan.New(scan.Config{Brackets: cfg.Brackets, Quotes: cfg.Quotes, Escape: cfg.Escape})
	if err != nil {
		return nil, err
	}
	if cfg.Marker == "" {
		return nil, fmt.Errorf("%w: empty marker", errs.ErrInvalidMarker)
	}
	if !s.IsOpen(cfg.Marker[0]) {
		return nil, fmt.Errorf("%w: %q does not start with one of %q", errs.ErrInvalidMarker, cfg.Marker, cfg.Brackets.Open)
	}

	return &Locator{
		marker:      []byte(cfg.Marker),
		scanner:     s,
		boundToNext: cfg.BoundToNextMarker,
	}, nil
}

// Marker returns the record marker.
func (l *Locator) Marker() string {
	return string(l.marker)
}

// Count returns the number of non-overlapping marker occurrences in blob.
func (l *Locator) Count(blob []byte) int {
	return bytes.Count(blob, l.marker)
}

// Offsets returns the offsets of all non-overlapping marker occurrences, in order.
func (l *Locator) Offsets(blob []byte) []int {
	offsets := make([]int, 0, l.Count(blob))
	for pos := l.next(blob, 0); pos >= 0; pos = l.next(blob, pos+len(l.marker)) {
		offsets = append(offsets, pos)
	}

	return offsets
}

// Locate returns a lazy, left-to-right sequence of the records in blob.
//
// Each marker occurrence yields exactly one element. When the record's closing
// brace cannot be found before the scan bound, the element carries a Record
// with End == -1 and an error wrapping errs.ErrUnterminatedRecord; the
// sequence then continues with the next marker. A blob without markers yields
// nothing.
//
// The sequence holds no state between iterations and can be ranged over again.
func (l *Locator) Locate(blob []byte) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		start := l.next(blob, 0)
		for start >= 0 {
			following := l.next(blob, start+len(l.marker))

			bound := len(blob)
			if l.boundToNext && following >= 0 {
				bound = following
			}

			rec, err := l.resolve(blob, start, bound)
			if !yield(rec, err) {
				return
			}

			start = following
		}
	}
}

// resolve finds the end of the record starting at start.
func (l *Locator) resolve(blob []byte, start, bound int) (Record, error) {
	end, err := l.scanner.ForwardDepth(blob, start+1, bound)
	if err != nil {
		return Record{Start: start, End: -1}, fmt.Errorf("record at offset %d: %w", start, err)
	}

	return Record{Start: start, End: end}, nil
}

// next returns the offset of the next marker at or after from, or -1.
func (l *Locator) next(blob []byte, from int) int {
	if from >= len(blob) {
		return -1
	}

	idx := bytes.Index(blob[from:], l.marker)
	if idx < 0 {
		return -1
	}

	return from + idx
}
