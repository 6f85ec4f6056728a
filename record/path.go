package record

import (
	"slices"

	"github.com/arloliu/carve/scan"
)

// PathConfig configures a PathReconstructor.
type PathConfig struct {
	// Brackets is the container bracket pair, distinct from the record pair.
	Brackets scan.Brackets
	Quotes   string
	Escape   byte
}

// DefaultPathConfig returns the configuration for Firefox session documents.
func DefaultPathConfig() PathConfig {
	return PathConfig{
		Brackets: ContainerBrackets,
		Quotes:   DefaultQuotes,
		Escape:   DefaultEscape,
	}
}

// PathReconstructor names the containers enclosing a record by walking
// backward from the record's start.
type PathReconstructor struct {
	scanner *scan.Scanner
}

// NewPathReconstructor creates a PathReconstructor.
func NewPathReconstructor(cfg PathConfig) (*PathReconstructor, error) {
	s, err := scan.New(scan.Config{Brackets: cfg.Brackets, Quotes: cfg.Quotes, Escape: cfg.Escape})
	if err != nil {
		return nil, err
	}

	return &PathReconstructor{scanner: s}, nil
}

// Reconstruct returns the root-first path of the record starting at start.
//
// Each enclosing container contributes the name from a `"<name>":` token
// directly before its opening bracket. A container without such a token (an
// array nested in an array, or the document root) contributes "".
//
// Returns an empty path for records at root level.
func (p *PathReconstructor) Reconstruct(blob []byte, start int) Path {
	var segments []string

	pos := start
	for {
		open, ok := p.scanner.BackwardOpener(blob, pos)
		if !ok {
			break
		}
		segments = append(segments, p.name(blob, open))
		pos = open
	}

	// Discovered innermost first.
	slices.Reverse(segments)

	return Path(segments)
}

// name extracts the container name from a `"<name>":` token ending right
// before the opening bracket at open, allowing whitespace around the colon.
func (p *PathReconstructor) name(blob []byte, open int) string {
	colon := prevNonSpace(blob, open)
	if colon < 0 || blob[colon] != ':' {
		return ""
	}

	closeQuote := prevNonSpace(blob, colon)
	if closeQuote < 0 || !p.scanner.IsQuote(blob[closeQuote]) {
		return ""
	}

	openQuote := p.scanner.PrevQuote(blob, closeQuote)
	if openQuote < 0 {
		return ""
	}

	return string(blob[openQuote+1 : closeQuote])
}

// prevNonSpace returns the offset of the last non-whitespace byte before pos, or -1.
func prevNonSpace(blob []byte, pos int) int {
	for i := pos - 1; i >= 0; i-- {
		switch blob[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return i
		}
	}

	return -1
}
