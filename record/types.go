package record

import "strings"

// Record is the span of one record inside a document.
//
// Start is the offset of the marker, whose first byte is the record's opening
// brace. End is the offset of the matching closing brace, so the half-open
// range [Start, End) covers the record without its closing brace.
type Record struct {
	Start int
	End   int
}

// Valid reports whether the record has a resolved end.
func (r Record) Valid() bool {
	return r.Start >= 0 && r.End > r.Start
}

// Body returns the bytes strictly between the record's outer braces.
// The returned slice aliases blob.
func (r Record) Body(blob []byte) []byte {
	if !r.Valid() || r.End > len(blob) {
		return nil
	}

	return blob[r.Start+1 : r.End]
}

// Raw returns the record including both outer braces.
func (r Record) Raw(blob []byte) []byte {
	if !r.Valid() || r.End >= len(blob) {
		return nil
	}

	return blob[r.Start : r.End+1]
}

// Fields maps recognized field names to their values.
type Fields map[string]string

// Get returns the value for name, or "" when the field is absent.
func (f Fields) Get(name string) string {
	return f[name]
}

// Path is the root-first chain of container names enclosing a record.
// Anonymous containers contribute an empty segment.
type Path []string

// String renders the path with sep after every segment, so anonymous
// containers still count toward the depth: {"a":[[...]]} renders as "a//"
// and a record inside a root-level array as "/". A root-level record renders
// as "".
func (p Path) String(sep string) string {
	n := len(p) * len(sep)
	for _, s := range p {
		n += len(s)
	}

	var b strings.Builder
	b.Grow(n)
	for _, s := range p {
		b.WriteString(s)
		b.WriteString(sep)
	}

	return b.String()
}

// Depth returns the number of enclosing containers.
func (p Path) Depth() int {
	return len(p)
}
