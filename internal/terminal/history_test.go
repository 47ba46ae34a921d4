package terminal

import "testing"

func TestHistoryPrevNext(t *testing.T) {
	h := NewHistory[string](20)
	if _, ok := h.Prev(); ok {
		t.Error("Prev on empty history should fail")
	}

	h.Push("one")
	h.Push("two")
	h.Push("three")

	if v, ok := h.Prev(); !ok || v != "three" {
		t.Errorf("Prev = %q, %v; want %q", v, ok, "three")
	}
	if v, ok := h.Prev(); !ok || v != "two" {
		t.Errorf("Prev = %q, %v; want %q", v, ok, "two")
	}
	if v, ok := h.Prev(); !ok || v != "one" {
		t.Errorf("Prev = %q, %v; want %q", v, ok, "one")
	}
	// Oldest entry: the cursor stays.
	if v, ok := h.Prev(); !ok || v != "one" {
		t.Errorf("Prev at oldest = %q, %v; want %q", v, ok, "one")
	}
	if v, ok := h.Next(); !ok || v != "two" {
		t.Errorf("Next = %q, %v; want %q", v, ok, "two")
	}
	if v, ok := h.Next(); !ok || v != "three" {
		t.Errorf("Next = %q, %v; want %q", v, ok, "three")
	}
	// Past the newest entry navigation ends.
	if _, ok := h.Next(); ok {
		t.Error("Next past newest should fail")
	}
	if h.Navigating() {
		t.Error("navigation should be reset")
	}
}

func TestHistoryPushResetsNavigation(t *testing.T) {
	h := NewHistory[string](20)
	h.Push("one")
	h.Prev()
	h.Push("two")
	if h.Navigating() {
		t.Error("Push must reset navigation")
	}
	if v, ok := h.Prev(); !ok || v != "two" {
		t.Errorf("Prev after push = %q, %v; want %q", v, ok, "two")
	}
}

func TestHistoryCapacity(t *testing.T) {
	h := NewHistory[int](3)
	for i := 1; i <= 5; i++ {
		h.Push(i)
	}
	if h.Len() != 3 {
		t.Fatalf("Len = %d, want 3", h.Len())
	}
	h.Prev()
	h.Prev()
	if v, _ := h.Prev(); v != 3 {
		t.Errorf("oldest surviving entry = %d, want 3", v)
	}
}

func TestHistoryInsertAtCurrent(t *testing.T) {
	h := NewHistory[string](20)
	h.Push("one")
	h.Push("two")
	h.Prev()
	h.InsertAtCurrent("two edited")
	if v, ok := h.Prev(); !ok || v != "one" {
		t.Fatalf("Prev = %q, %v; want %q", v, ok, "one")
	}
	if v, ok := h.Next(); !ok || v != "two edited" {
		t.Errorf("edited entry = %q, %v; want %q", v, ok, "two edited")
	}
}
