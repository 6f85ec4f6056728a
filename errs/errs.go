// Package errs defines the sentinel errors shared by carve packages.
//
// Errors are wrapped with context using fmt.Errorf("...: %w", err); callers
// should match them with errors.Is.
package errs

import "errors"

// Scanning and record errors.
var (
	// ErrUnterminatedRecord is returned when forward depth matching reaches the
	// end of its search bound before the record's opening brace is closed.
	ErrUnterminatedRecord = errors.New("unterminated record")

	// ErrMalformedField marks a record token that could not be split into a
	// key and a value. The tokenizer recovers from it locally.
	ErrMalformedField = errors.New("malformed field")
)

// Configuration errors.
var (
	ErrInvalidMarker   = errors.New("invalid record marker")
	ErrInvalidBrackets = errors.New("invalid bracket pair")
	ErrInvalidQuotes   = errors.New("invalid quote set")
	ErrInvalidColumns  = errors.New("invalid output columns")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

// Input and output errors.
var (
	// ErrSourceUnavailable is returned when the input document cannot be read
	// or decoded. It is fatal and surfaces before any row is produced.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrTruncatedInput is returned together with the readable prefix of a
	// compressed input that ends early.
	ErrTruncatedInput = errors.New("truncated input")

	ErrInvalidHeaderSize      = errors.New("invalid header size")
	ErrInvalidMagicNumber     = errors.New("invalid magic number")
	ErrUnsupportedCompression = errors.New("unsupported compression type")
	ErrUnsupportedFormat      = errors.New("unsupported output format")
	ErrSinkClosed             = errors.New("sink closed")
)
