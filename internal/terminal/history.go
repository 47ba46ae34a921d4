package terminal

// History is a bounded ring of previously submitted entries with a
// navigation cursor. Pushing a new entry resets navigation.
type History[T any] struct {
	entries []T
	cap     int
	nav     int // index while navigating, -1 otherwise
}

// NewHistory returns an empty history bounded to capacity entries.
func NewHistory[T any](capacity int) *History[T] {
	return &History[T]{cap: capacity, nav: -1}
}

// Len reports the number of stored entries.
func (h *History[T]) Len() int { return len(h.entries) }

// Navigating reports whether the cursor currently points at an entry.
func (h *History[T]) Navigating() bool { return h.nav != -1 }

// Push appends v, evicting the oldest entry at capacity.
func (h *History[T]) Push(v T) {
	h.entries = append(h.entries, v)
	if len(h.entries) > h.cap {
		h.entries = h.entries[1:]
	}
	h.nav = -1
}

// Prev steps the cursor toward older entries and returns the entry it
// lands on. At the oldest entry the cursor stays put.
func (h *History[T]) Prev() (T, bool) {
	var zero T
	if len(h.entries) == 0 {
		return zero, false
	}
	switch {
	case h.nav == -1:
		h.nav = len(h.entries) - 1
	case h.nav > 0:
		h.nav--
	}
	return h.entries[h.nav], true
}

// Next steps the cursor toward newer entries. Stepping past the
// newest entry ends navigation and returns false.
func (h *History[T]) Next() (T, bool) {
	var zero T
	if h.nav == -1 {
		return zero, false
	}
	if h.nav+1 >= len(h.entries) {
		h.nav = -1
		return zero, false
	}
	h.nav++
	return h.entries[h.nav], true
}

// InsertAtCurrent overwrites the entry under the cursor, preserving
// in-place edits made while browsing. No-op when not navigating.
func (h *History[T]) InsertAtCurrent(v T) {
	if h.nav != -1 {
		h.entries[h.nav] = v
	}
}
