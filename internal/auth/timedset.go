package auth

import (
	"sort"
	"sync"
	"time"
)

// TimedSet is a set whose entries expire after a TTL. Expiry is
// checked on read; Sweep drops expired entries eagerly so a long-idle
// process does not hold them forever.
type TimedSet struct {
	mu    sync.Mutex
	items map[string]time.Time
}

// NewTimedSet returns an empty set.
func NewTimedSet() *TimedSet {
	return &TimedSet{items: make(map[string]time.Time)}
}

// Insert adds item with the given lifetime, extending it if already
// present.
func (s *TimedSet) Insert(item string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item] = time.Now().Add(ttl)
}

// Contains reports whether item is present and unexpired. An expired
// entry is removed on the way.
func (s *TimedSet) Contains(item string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline, ok := s.items[item]
	if !ok {
		return false
	}
	if time.Now().After(deadline) {
		delete(s.items, item)
		return false
	}
	return true
}

// Items lists the unexpired entries in sorted order.
func (s *TimedSet) Items() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var out []string
	for item, deadline := range s.items {
		if now.After(deadline) {
			continue
		}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// Sweep removes every expired entry.
func (s *TimedSet) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for item, deadline := range s.items {
		if now.After(deadline) {
			delete(s.items, item)
		}
	}
}

// Len counts unexpired entries.
func (s *TimedSet) Len() int {
	return len(s.Items())
}
