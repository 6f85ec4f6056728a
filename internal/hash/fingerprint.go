// Package hash computes xxHash64 fingerprints of output rows.
package hash

import "github.com/cespare/xxhash/v2"

// Separator is written between values so that ["ab","c"] and ["a","bc"]
// produce different fingerprints.
const Separator = '\x1f'

// String returns the xxHash64 of s.
func String(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Values returns the xxHash64 of values joined by Separator.
func Values(values []string) uint64 {
	d := xxhash.New()
	for i, v := range values {
		if i > 0 {
			_, _ = d.Write([]byte{Separator})
		}
		_, _ = d.WriteString(v)
	}

	return d.Sum64()
}

// Key joins values with Separator. Values(v) == String(Key(v)).
func Key(values []string) string {
	n := len(values)
	for _, v := range values {
		n += len(v)
	}

	b := make([]byte, 0, n)
	for i, v := range values {
		if i > 0 {
			b = append(b, Separator)
		}
		b = append(b, v...)
	}

	return string(b)
}
