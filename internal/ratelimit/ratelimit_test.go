package ratelimit

import (
	"testing"
	"time"
)

func TestBurstThenLimit(t *testing.T) {
	l := New()
	for i := 0; i < 10; i++ {
		if _, ok := l.Check(); !ok {
			t.Fatalf("message %d should pass within the burst", i+1)
		}
	}
	wait, ok := l.Check()
	if ok {
		t.Fatal("11th rapid message should be limited")
	}
	if wait < 0 || wait.Seconds() > 1 {
		t.Errorf("wait = %v, want at most 1s truncated", wait)
	}
}

func TestRefillAfterWait(t *testing.T) {
	l := New()
	for i := 0; i < 10; i++ {
		l.Check()
	}
	if _, ok := l.Check(); ok {
		t.Fatal("bucket should be empty")
	}
	// One token refills every 100ms; denied checks must not consume.
	time.Sleep(150 * time.Millisecond)
	if _, ok := l.Check(); !ok {
		t.Error("token should have refilled")
	}
}
