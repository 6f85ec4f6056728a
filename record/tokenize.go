package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arloliu/carve/errs"
	"github.com/arloliu/carve/scan"
)

// DefaultFields is the recognized field set for session history entries.
var DefaultFields = []string{"url", "title", "ID", "referrer", "scroll", "subframe"}

// stripSet is trimmed from both ends of keys and unquoted values.
const stripSet = "\"{}[]"

// FieldSet is a closed set of recognized field names.
type FieldSet map[string]struct{}

// NewFieldSet builds a FieldSet from names. Empty names are ignored.
func NewFieldSet(names ...string) FieldSet {
	set := make(FieldSet, len(names))
	for _, n := range names {
		if n != "" {
			set[n] = struct{}{}
		}
	}

	return set
}

// Has reports whether name is recognized.
func (s FieldSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// TokenizerConfig configures a Tokenizer.
type TokenizerConfig struct {
	Fields []string
	Quotes string
	Escape byte
}

// DefaultTokenizerConfig returns the configuration for Firefox session documents.
func DefaultTokenizerConfig() TokenizerConfig {
	return TokenizerConfig{
		Fields: DefaultFields,
		Quotes: DefaultQuotes,
		Escape: DefaultEscape,
	}
}

// TokenStats counts what happened to the tokens of one record body.
type TokenStats struct {
	Tokens    int
	Kept      int
	Malformed int
}

// Tokenizer turns a flat record body into a Fields map.
//
// Tokens are split on commas that sit outside quoted spans and outside nested
// objects or arrays, so a nested value never leaks its keys into the
// enclosing record.
type Tokenizer struct {
	fields  FieldSet
	scanner *scan.Scanner
	escape  byte
}

// NewTokenizer creates a Tokenizer.
func NewTokenizer(cfg TokenizerConfig) (*Tokenizer, error) {
	fields := NewFieldSet(cfg.Fields...)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no recognized fields", errs.ErrInvalidColumns)
	}

	s, err := scan.New(scan.Config{
		Brackets: scan.Brackets{
			Open:  RecordBrackets.Open + ContainerBrackets.Open,
			Close: RecordBrackets.Close + ContainerBrackets.Close,
		},
		Quotes: cfg.Quotes,
		Escape: cfg.Escape,
	})
	if err != nil {
		return nil, err
	}

	return &Tokenizer{fields: fields, scanner: s, escape: cfg.Escape}, nil
}

// Fields returns the recognized field set.
func (t *Tokenizer) Fields() FieldSet {
	return t.fields
}

// Tokenize returns the recognized fields of body. Malformed tokens are skipped.
func (t *Tokenizer) Tokenize(body []byte) Fields {
	fields, _ := t.TokenizeStats(body)
	return fields
}

// TokenizeStats is like Tokenize but also reports token counts.
//
// A token without a top-level colon, or with an empty key, counts as
// malformed (errs.ErrMalformedField) and is dropped. A recognized key that
// appears more than once keeps its last value.
func (t *Tokenizer) TokenizeStats(body []byte) (Fields, TokenStats) {
	fields := make(Fields, len(t.fields))
	var stats TokenStats

	pos := 0
	for pos <= len(body) {
		comma := t.scanner.IndexTopLevel(body, ',', pos)
		end := comma
		if end < 0 {
			end = len(body)
		}

		token := body[pos:end]
		if len(bytes.TrimSpace(token)) > 0 {
			stats.Tokens++
			key, value, err := t.SplitField(token)
			switch {
			case err != nil:
				stats.Malformed++
			case t.fields.Has(key):
				fields[key] = value
				stats.Kept++
			}
		}

		if comma < 0 {
			break
		}
		pos = comma + 1
	}

	return fields, stats
}

// SplitField separates one `key:value` token on its first colon outside
// quotes and nested brackets, and unwraps both sides.
//
// Returns errs.ErrMalformedField when there is no such colon or the key is
// empty.
func (t *Tokenizer) SplitField(token []byte) (string, string, error) {
	colon := t.scanner.IndexTopLevel(token, ':', 0)
	if colon < 0 {
		return "", "", fmt.Errorf("%w: no separator in %q", errs.ErrMalformedField, token)
	}

	key := strings.Trim(string(bytes.TrimSpace(token[:colon])), stripSet)
	if key == "" {
		return "", "", fmt.Errorf("%w: empty key in %q", errs.ErrMalformedField, token)
	}

	return key, t.value(bytes.TrimSpace(token[colon+1:])), nil
}

// value unwraps a raw field value.
//
// A fully quoted value loses exactly one pair of quotes, and JSON escapes are
// decoded when the value contains the escape byte. Anything else is trimmed
// of quote and bracket characters.
func (t *Tokenizer) value(raw []byte) string {
	n := len(raw)
	if n >= 2 && t.scanner.IsQuote(raw[0]) && raw[n-1] == raw[0] && t.scanner.NextQuote(raw, 0, n) == n-1 {
		inner := raw[1 : n-1]
		if t.escape == 0 || bytes.IndexByte(inner, t.escape) < 0 {
			return string(inner)
		}
		if raw[0] == '"' {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				return s
			}
		}

		return string(inner)
	}

	return strings.Trim(string(raw), stripSet)
}
