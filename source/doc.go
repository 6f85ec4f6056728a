// Package source loads input documents.
//
// Read returns the whole decompressed document, because record location
// needs random access over an immutable blob. Compression is detected from
// magic bytes first and the file name second, so Firefox's mozLz4 files
// (sessionstore.jsonlz4, recovery.jsonlz4, recovery.baklz4) and archived
// gzip or zstd copies are handled transparently.
//
// Every failure wraps errs.ErrSourceUnavailable. It is fatal for the input
// and happens before any row is produced.
//
// Expand resolves doublestar patterns such as "profiles/**/sessionstore*",
// and Watcher reports when a watched document has been rewritten.
package source
