package extract

import "log/slog"

// Stats summarizes one run.
type Stats struct {
	// Markers is the number of marker occurrences in the document.
	Markers int
	// Rows is the number of rows written.
	Rows int
	// Skipped is the number of unterminated records dropped.
	Skipped int
	// Duplicates is the number of rows dropped by de-duplication.
	Duplicates int
	// MalformedFields is the number of tokens that could not be split into a
	// key and a value.
	MalformedFields int
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Markers += other.Markers
	s.Rows += other.Rows
	s.Skipped += other.Skipped
	s.Duplicates += other.Duplicates
	s.MalformedFields += other.MalformedFields
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("markers", s.Markers),
		slog.Int("rows", s.Rows),
		slog.Int("skipped", s.Skipped),
		slog.Int("duplicates", s.Duplicates),
		slog.Int("malformed_fields", s.MalformedFields),
	)
}
