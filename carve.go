// Package carve recovers structured records from large, possibly truncated or
// corrupted, bracket-delimited text documents.
//
// The reference documents are Firefox session files: sessionstore.js, its
// mozLz4-compressed successors (recovery.jsonlz4, previous.jsonlz4) and the
// upgrade backups. Each history entry starts with the literal marker
// {"url": and carve finds its end by matching braces while skipping quoted
// text, so a document that is cut off or partially overwritten still yields
// every entry that survived.
//
// # Core Features
//
//   - Marker-driven record location with quote-aware brace matching
//   - Container path reconstruction (windows/tabs/entries/children)
//   - Flat field tokenization into a fixed column set
//   - Transparent input decompression (mozLz4, gzip, zstd, s2, lz4)
//   - CSV, JSONL, table and SQLite output, optionally compressed
//   - Optional row de-duplication by xxHash64 fingerprint
//
// # Basic Usage
//
// Extracting a session file into CSV:
//
//	w, _ := sink.NewFile(ctx, "tabs.csv", format.OutputCSV, extract.DefaultColumns)
//	stats, err := carve.ExtractFile(ctx, "recovery.jsonlz4", w)
//	if err != nil {
//	    return err
//	}
//	if err := w.Close(); err != nil {
//	    return err
//	}
//	fmt.Printf("%d rows, %d damaged records skipped\n", stats.Rows, stats.Skipped)
//
// Iterating rows lazily:
//
//	rows, _ := carve.Rows(data)
//	for row, err := range rows {
//	    if err != nil {
//	        continue // unterminated record
//	    }
//	    fmt.Println(row.Fields.Get("url"), row.Path.String("/"))
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the extract,
// source and sink packages. For fine-grained control over markers, bracket
// pairs, columns or failure policy, use the extract package directly.
package carve

import (
	"context"
	"iter"

	"github.com/arloliu/carve/extract"
	"github.com/arloliu/carve/internal/hash"
	"github.com/arloliu/carve/source"
)

// NewExtractor creates an extractor for Firefox session documents.
//
// Parameters:
//   - opts: Options applied over extract.DefaultConfig
//
// Returns:
//   - *extract.Extractor: Ready to use extractor
//   - error: Configuration errors
func NewExtractor(opts ...extract.Option) (*extract.Extractor, error) {
	return extract.New(opts...)
}

// ExtractFile reads, decompresses and extracts the document called name
// ("-" reads standard input) into w. w is not closed.
//
// Parameters:
//   - ctx: Cancels reading and extraction
//   - name: Input file name
//   - w: Row destination
//   - opts: Extractor options
//
// Returns:
//   - extract.Stats: Counts for the records processed
//   - error: errs.ErrSourceUnavailable, configuration, policy or sink errors
func ExtractFile(ctx context.Context, name string, w extract.Sink, opts ...extract.Option) (extract.Stats, error) {
	ex, err := extract.New(opts...)
	if err != nil {
		return extract.Stats{}, err
	}

	doc, err := source.Read(ctx, name)
	if err != nil {
		return extract.Stats{}, err
	}

	return ex.Run(ctx, doc.Data, w)
}

// ExtractBytes is like ExtractFile for a document already in memory. data may
// be compressed.
func ExtractBytes(ctx context.Context, data []byte, w extract.Sink, opts ...extract.Option) (extract.Stats, error) {
	ex, err := extract.New(opts...)
	if err != nil {
		return extract.Stats{}, err
	}

	doc, err := source.Decode("", data)
	if err != nil {
		return extract.Stats{}, err
	}

	return ex.Run(ctx, doc.Data, w)
}

// Rows returns a lazy sequence of the rows of data. data may be compressed.
//
// Unterminated records yield an error value and the sequence continues.
func Rows(data []byte, opts ...extract.Option) (iter.Seq2[extract.Row, error], error) {
	ex, err := extract.New(opts...)
	if err != nil {
		return nil, err
	}

	doc, err := source.Decode("", data)
	if err != nil {
		return nil, err
	}

	return ex.All(doc.Data), nil
}

// Fingerprint returns the xxHash64 fingerprint of a row's values, the same
// hash the extractor uses to drop duplicate rows.
func Fingerprint(values ...string) uint64 {
	return hash.Values(values)
}
