// Package collision tracks row fingerprints for de-duplication and detects
// fingerprint collisions between distinct rows.
package collision

import (
	"github.com/arloliu/carve/internal/hash"
)

// Tracker remembers the rows seen so far, keyed by their xxHash64 fingerprint.
//
// The canonical key of each row is kept next to its fingerprint, so two
// different rows that share a fingerprint are both treated as new and the
// collision is recorded instead of silently dropping a row.
type Tracker struct {
	keys       map[uint64]string   // fingerprint → first key seen
	overflow   map[string]struct{} // keys whose fingerprint was already taken
	count      int
	duplicates int
	collisions int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		keys:     make(map[uint64]string),
		overflow: make(map[string]struct{}),
	}
}

// Track records the row made of values and reports whether it was new.
func (t *Tracker) Track(values []string) bool {
	return t.TrackKey(hash.Key(values))
}

// TrackKey records a canonical row key and reports whether it was new.
func (t *Tracker) TrackKey(key string) bool {
	return t.track(key, hash.String(key))
}

func (t *Tracker) track(key string, h uint64) bool {
	existing, exists := t.keys[h]
	if !exists {
		t.keys[h] = key
		t.count++

		return true
	}

	if existing == key {
		t.duplicates++
		return false
	}

	// Same fingerprint, different row.
	if _, dup := t.overflow[key]; dup {
		t.duplicates++
		return false
	}
	t.overflow[key] = struct{}{}
	t.collisions++
	t.count++

	return true
}

// HasCollision reports whether two distinct rows shared a fingerprint.
func (t *Tracker) HasCollision() bool {
	return t.collisions > 0
}

// Collisions returns the number of distinct rows that hit a taken fingerprint.
func (t *Tracker) Collisions() int {
	return t.collisions
}

// Count returns the number of distinct rows tracked.
func (t *Tracker) Count() int {
	return t.count
}

// Duplicates returns the number of rows rejected as already seen.
func (t *Tracker) Duplicates() int {
	return t.duplicates
}

// Reset clears all tracked rows while keeping map capacity.
func (t *Tracker) Reset() {
	clear(t.keys)
	clear(t.overflow)
	t.count = 0
	t.duplicates = 0
	t.collisions = 0
}
