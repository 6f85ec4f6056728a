package extract

import (
	"bytes"
	"strconv"
	"time"
)

// FindTimestamp returns the integer that follows the last occurrence of
// marker in blob. Whitespace between the marker and the digits is allowed.
// Occurrences not followed by digits are ignored.
func FindTimestamp(blob []byte, marker string) (int64, bool) {
	if marker == "" {
		return 0, false
	}

	m := []byte(marker)
	end := len(blob)
	for end > 0 {
		idx := bytes.LastIndex(blob[:end], m)
		if idx < 0 {
			return 0, false
		}

		if v, ok := parseDigits(blob, idx+len(m)); ok {
			return v, true
		}
		end = idx
	}

	return 0, false
}

func parseDigits(blob []byte, pos int) (int64, bool) {
	for pos < len(blob) && isSpace(blob[pos]) {
		pos++
	}

	start := pos
	for pos < len(blob) && blob[pos] >= '0' && blob[pos] <= '9' {
		pos++
	}
	if pos == start {
		return 0, false
	}

	v, err := strconv.ParseInt(string(blob[start:pos]), 10, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// FormatTimestamp renders milliseconds since the Unix epoch with layout in loc.
// A nil loc means time.Local.
func FormatTimestamp(ms int64, layout string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	return time.UnixMilli(ms).In(loc).Format(layout)
}
