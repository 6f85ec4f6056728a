package scan

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/arloliu/carve/errs"
)

// Brackets describes one pair of bracket character sets.
//
// Every byte in Open increments the nesting depth and every byte in Close
// decrements it. The two sets must be non-empty and disjoint.
type Brackets struct {
	Open  string `mapstructure:"open" yaml:"open"`
	Close string `mapstructure:"close" yaml:"close"`
}

// Validate checks that the bracket sets are usable.
func (b Brackets) Validate() error {
	if b.Open == "" || b.Close == "" {
		return fmt.Errorf("%w: open %q, close %q", errs.ErrInvalidBrackets, b.Open, b.Close)
	}
	if strings.ContainsAny(b.Open, b.Close) {
		return fmt.Errorf("%w: open %q and close %q overlap", errs.ErrInvalidBrackets, b.Open, b.Close)
	}

	return nil
}

// Config configures a Scanner.
type Config struct {
	// Brackets is the pair whose depth is tracked.
	Brackets Brackets
	// Quotes is the set of quote characters. Each quote is closed by the same character.
	Quotes string
	// Escape, when non-zero, marks the byte that escapes a following quote.
	Escape byte
}

type class uint8

const (
	classNone class = iota
	classOpen
	classClose
	classQuote
)

// Scanner performs quote-aware depth matching over a single bracket pair.
type Scanner struct {
	table  [256]class
	escape byte
}

// New creates a Scanner from the given configuration.
//
// Parameters:
//   - cfg: Bracket pair, quote set and optional escape byte
//
// Returns:
//   - *Scanner: Immutable scanner
//   - error: ErrInvalidBrackets or ErrInvalidQuotes when the sets are empty or overlap
func New(cfg Config) (*Scanner, error) {
	if err := cfg.Brackets.Validate(); err != nil {
		return nil, err
	}
	if cfg.Quotes == "" {
		return nil, fmt.Errorf("%w: empty quote set", errs.ErrInvalidQuotes)
	}
	if strings.ContainsAny(cfg.Quotes, cfg.Brackets.Open+cfg.Brackets.Close) {
		return nil, fmt.Errorf("%w: quotes %q overlap brackets", errs.ErrInvalidQuotes, cfg.Quotes)
	}
	if cfg.Escape != 0 && strings.IndexByte(cfg.Quotes, cfg.Escape) >= 0 {
		return nil, fmt.Errorf("%w: escape %q is also a quote", errs.ErrInvalidQuotes, cfg.Escape)
	}

	s := &Scanner{escape: cfg.Escape}
	for i := range len(cfg.Brackets.Open) {
		s.table[cfg.Brackets.Open[i]] = classOpen
	}
	for i := range len(cfg.Brackets.Close) {
		s.table[cfg.Brackets.Close[i]] = classClose
	}
	for i := range len(cfg.Quotes) {
		s.table[cfg.Quotes[i]] = classQuote
	}

	return s, nil
}

// MustNew is like New but panics on an invalid configuration.
// It is intended for package-level defaults built from constants.
func MustNew(cfg Config) *Scanner {
	s, err := New(cfg)
	if err != nil {
		panic(err)
	}

	return s
}

func (s *Scanner) IsOpen(c byte) bool  { return s.table[c] == classOpen }
func (s *Scanner) IsClose(c byte) bool { return s.table[c] == classClose }
func (s *Scanner) IsQuote(c byte) bool { return s.table[c] == classQuote }

// ForwardDepth walks text[from:to] and returns the offset of the closing bracket
// that takes the depth below zero.
//
// The depth starts at zero, so from should point just after the opening bracket
// being matched. Quoted spans, including any brackets inside them, are skipped.
//
// Parameters:
//   - text: Immutable input
//   - from: First offset to examine (clamped to the text)
//   - to: Exclusive scan bound (clamped to the text)
//
// Returns:
//   - int: Offset of the matching closing bracket, or -1
//   - error: ErrUnterminatedRecord if the bound is reached first
func (s *Scanner) ForwardDepth(text []byte, from, to int) (int, error) {
	from, to = clampRange(from, to, len(text))

	depth := 0
	for i := from; i < to; i++ {
		switch s.table[text[i]] {
		case classQuote:
			j := s.NextQuote(text, i, to)
			if j < 0 {
				return -1, fmt.Errorf("%w: open quote at offset %d", errs.ErrUnterminatedRecord, i)
			}
			i = j
		case classOpen:
			depth++
		case classClose:
			depth--
			if depth < 0 {
				return i, nil
			}
		case classNone:
		}
	}

	return -1, fmt.Errorf("%w: bound %d reached at depth %d", errs.ErrUnterminatedRecord, to, depth)
}

// BackwardOpener walks backward from the byte just before from and returns the
// offset of the first opening bracket that takes the depth below zero.
//
// Returns false when the start of the text is reached first, which means the
// offset sits at root level.
func (s *Scanner) BackwardOpener(text []byte, from int) (int, bool) {
	from = clamp(from, len(text))

	depth := 0
	for i := from - 1; i >= 0; i-- {
		switch s.table[text[i]] {
		case classQuote:
			j := s.PrevQuote(text, i)
			if j < 0 {
				return -1, false
			}
			i = j
		case classClose:
			depth++
		case classOpen:
			depth--
			if depth < 0 {
				return i, true
			}
		case classNone:
		}
	}

	return -1, false
}

// IndexTopLevel returns the offset of the first sep byte in text[from:] that is
// outside every quoted span and at bracket depth zero, or -1.
//
// Stray closing brackets never take the depth below zero, which keeps
// splitting stable on record bodies cut from the middle of a document.
func (s *Scanner) IndexTopLevel(text []byte, sep byte, from int) int {
	from = clamp(from, len(text))

	depth := 0
	for i := from; i < len(text); i++ {
		c := text[i]
		switch s.table[c] {
		case classQuote:
			j := s.NextQuote(text, i, len(text))
			if j < 0 {
				return -1
			}
			i = j
			continue
		case classOpen:
			depth++
			continue
		case classClose:
			if depth > 0 {
				depth--
			}
			continue
		case classNone:
		}
		if c == sep && depth == 0 {
			return i
		}
	}

	return -1
}

// NextQuote returns the offset of the quote that closes the span opened at
// text[at], searching text[at+1:to]. Returns -1 if there is none.
func (s *Scanner) NextQuote(text []byte, at, to int) int {
	to = clamp(to, len(text))
	if at < 0 || at >= to {
		return -1
	}

	q := text[at]
	for k := at + 1; k < to; {
		idx := bytes.IndexByte(text[k:to], q)
		if idx < 0 {
			return -1
		}
		p := k + idx
		if !s.escaped(text, p) {
			return p
		}
		k = p + 1
	}

	return -1
}

// PrevQuote returns the offset of the quote that opens the span closed at
// text[at], searching text[:at]. Returns -1 if there is none.
func (s *Scanner) PrevQuote(text []byte, at int) int {
	if at <= 0 || at >= len(text) {
		return -1
	}

	q := text[at]
	for k := at; k > 0; {
		p := bytes.LastIndexByte(text[:k], q)
		if p < 0 {
			return -1
		}
		if !s.escaped(text, p) {
			return p
		}
		k = p
	}

	return -1
}

// escaped reports whether text[p] is preceded by an odd run of escape bytes.
func (s *Scanner) escaped(text []byte, p int) bool {
	if s.escape == 0 {
		return false
	}

	n := 0
	for j := p - 1; j >= 0 && text[j] == s.escape; j-- {
		n++
	}

	return n%2 == 1
}

func clamp(v, n int) int {
	return min(max(v, 0), n)
}

func clampRange(from, to, n int) (int, int) {
	to = clamp(to, n)
	from = min(clamp(from, n), to)

	return from, to
}
