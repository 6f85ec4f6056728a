// Package record locates marker-delimited records inside a bracket-delimited
// document and turns each one into a flat field map and an ancestry path.
//
// The package never parses the document as a whole. It relies on the scan
// package to match brackets locally, so it keeps working on documents that
// are cut off or damaged part way through.
//
// # Components
//
//   - Locator: finds marker occurrences and the matching end of each record
//   - PathReconstructor: walks backward through enclosing containers to name
//     the chain of arrays that hold a record
//   - Tokenizer: splits a record body into key/value pairs and keeps the
//     recognized keys
//
// # Example
//
//	loc, _ := record.NewLocator(record.DefaultLocatorConfig())
//	paths, _ := record.NewPathReconstructor(record.DefaultPathConfig())
//	tok, _ := record.NewTokenizer(record.DefaultTokenizerConfig())
//
//	for rec, err := range loc.Locate(blob) {
//	    if err != nil {
//	        continue // errs.ErrUnterminatedRecord
//	    }
//	    fields := tok.Tokenize(rec.Body(blob))
//	    path := paths.Reconstruct(blob, rec.Start)
//	    fmt.Println(path.String("/"), fields["url"])
//	}
//
// All components are immutable after construction and hold no per-document
// state, so running them twice over the same document yields the same result.
package record
