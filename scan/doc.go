// Package scan provides quote-aware bracket-depth scanning over immutable text.
//
// A Scanner walks a byte slice forward or backward while treating quoted spans
// as opaque and counting the nesting depth of one configurable bracket pair.
// It is the primitive used to find where a record ends and which containers
// enclose it, without parsing the document.
//
// # Forward Scanning
//
// ForwardDepth starts just after an opening bracket and returns the offset of
// its matching closing bracket:
//
//	s := scan.MustNew(scan.Config{
//	    Brackets: scan.Brackets{Open: "{", Close: "}"},
//	    Quotes:   `"`,
//	})
//	end, err := s.ForwardDepth(text, start+1, len(text))
//
// # Backward Scanning
//
// BackwardOpener walks toward the start of the text and returns the opening
// bracket of the innermost container enclosing an offset:
//
//	s := scan.MustNew(scan.Config{
//	    Brackets: scan.Brackets{Open: "[", Close: "]"},
//	    Quotes:   `"`,
//	})
//	open, ok := s.BackwardOpener(text, recordStart)
//
// # Tolerance
//
// All offsets are clamped to the text bounds. A quote without a partner
// before the scan boundary skips to the boundary, so truncated input never
// causes a panic. When Config.Escape is non-zero, a quote preceded by an odd
// run of escape bytes is part of the quoted span rather than its delimiter.
//
// # Thread Safety
//
// A Scanner is immutable after construction and safe for concurrent use.
package scan
