// Package extract composes the record package into a streaming pipeline that
// turns a document into output rows.
//
// For every record the Locator finds, the Extractor tokenizes the record
// body, rebuilds the container path from the record start, and attaches the
// document timestamp (the last "lastUpdate" value in the whole document,
// computed once). Rows are produced lazily and written one at a time, so
// memory use beyond the immutable document is bounded by a single record.
//
// # Failure Policy
//
// A record whose closing brace cannot be found is unterminated. By default
// (SkipUnterminated) it is logged at warn level, counted in Stats.Skipped and
// the run continues. AbortOnUnterminated stops the run with an error wrapping
// errs.ErrUnterminatedRecord. Malformed fields inside a record never stop a
// run; they are counted in Stats.MalformedFields.
//
// # Usage
//
//	ex, err := extract.New(extract.WithDedup(true))
//	if err != nil {
//	    return err
//	}
//	stats, err := ex.Run(ctx, blob, writer)
//
// Consumers that want rows instead of a sink can range over All and stop at
// any point by breaking out of the loop.
package extract
