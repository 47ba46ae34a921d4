package message

// History keeps the most recent public messages for replay to
// joining members.
type History struct {
	entries []Message
	cap     int
}

// NewHistory returns an empty history bounded to capacity messages.
func NewHistory(capacity int) *History {
	return &History{cap: capacity}
}

// Push appends m, evicting the oldest message at capacity.
func (h *History) Push(m Message) {
	h.entries = append(h.entries, m)
	if len(h.entries) > h.cap {
		h.entries = h.entries[1:]
	}
}

// All returns the stored messages, oldest first.
func (h *History) All() []Message {
	out := make([]Message, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len reports the number of stored messages.
func (h *History) Len() int { return len(h.entries) }
