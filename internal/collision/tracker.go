// Package collision maps 64-bit content hashes to dense entry indices.
//
// Entries are identified by their hash first; when two distinct entries share a hash
// they are chained and told apart by the caller's equality check, and the tracker
// remembers that a collision occurred.
package collision

// Tracker assigns consecutive indices to hashed entries.
type Tracker struct {
	heads        map[uint64]int32 // hash → most recent entry with that hash
	next         []int32          // entry → previous entry with the same hash, or -1
	hasCollision bool             // two distinct entries shared a hash
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		heads: make(map[uint64]int32),
	}
}

// Find returns the index of a tracked entry with the given hash for which equal
// reports true.
func (t *Tracker) Find(hash uint64, equal func(idx int) bool) (int, bool) {
	idx, ok := t.heads[hash]
	if !ok {
		return 0, false
	}
	for ; idx >= 0; idx = t.next[idx] {
		if equal(int(idx)) {
			return int(idx), true
		}
	}

	return 0, false
}

// Add registers a new entry under hash and returns its index, which equals the number
// of entries tracked before the call. Callers use Find first to avoid duplicates.
func (t *Tracker) Add(hash uint64) int {
	idx := int32(len(t.next)) //nolint:gosec
	prev, exists := t.heads[hash]
	if exists {
		t.hasCollision = true
	} else {
		prev = -1
	}
	t.next = append(t.next, prev)
	t.heads[hash] = idx

	return int(idx)
}

// HasCollision reports whether two distinct entries have shared a hash.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Count returns the number of tracked entries.
func (t *Tracker) Count() int {
	return len(t.next)
}

// Reset forgets all entries.
func (t *Tracker) Reset() {
	clear(t.heads)
	t.next = t.next[:0]
	t.hasCollision = false
}
