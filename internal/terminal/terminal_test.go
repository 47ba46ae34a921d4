package terminal

import (
	"bytes"
	"testing"
)

type mockHandle struct {
	bytes.Buffer
	closed bool
}

func (m *mockHandle) Close() error {
	m.closed = true
	return nil
}

func newTestTerminal() (*Terminal, *mockHandle) {
	h := &mockHandle{}
	t := New(h)
	t.SetSize(80, 24)
	t.SetPrompt("[alice] ")
	return t, h
}

func TestPrintInputLineBytes(t *testing.T) {
	term, h := newTestTerminal()
	if err := term.PrintInputLine(); err != nil {
		t.Fatalf("PrintInputLine: %v", err)
	}
	want := "\x1b[1G\x1b[2K[alice] "
	if got := h.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestPrintMessageRepaintsPrompt(t *testing.T) {
	term, h := newTestTerminal()
	term.Input.InsertBeforeCursor([]byte("typing"))
	if err := term.PrintMessage("bob: hi"); err != nil {
		t.Fatalf("PrintMessage: %v", err)
	}
	want := "\x1b[1G\x1b[2Kbob: hi\n\r[alice] typing"
	if got := h.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestCursorMovesLeft(t *testing.T) {
	term, h := newTestTerminal()
	term.Input.InsertBeforeCursor([]byte("hello"))
	term.Input.MoveCursorPrev()
	term.Input.MoveCursorPrev()
	if err := term.PrintInputLine(); err != nil {
		t.Fatalf("PrintInputLine: %v", err)
	}
	// After writing "[alice] hello" the cursor sits at column 13;
	// the input cursor belongs two cells back.
	want := "\x1b[1G\x1b[2K[alice] hello\x1b[2D"
	if got := h.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestWrappedInputCleanup(t *testing.T) {
	term, h := newTestTerminal()
	term.SetSize(10, 24)
	// Prompt (8 cols) plus 5 chars spans two lines.
	term.Input.InsertBeforeCursor([]byte("abcde"))
	if err := term.PrintInputLine(); err != nil {
		t.Fatalf("PrintInputLine: %v", err)
	}
	h.Reset()
	if err := term.PrintInputLine(); err != nil {
		t.Fatalf("repaint: %v", err)
	}
	// The repaint must erase both spanned lines before rewriting.
	want := "\x1b[1G\x1b[2K\x1b[1A\x1b[2K[alice] abcde"
	if got := h.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestExactWidthForcesWrap(t *testing.T) {
	term, h := newTestTerminal()
	term.SetSize(13, 24)
	term.Input.InsertBeforeCursor([]byte("hello"))
	if err := term.PrintInputLine(); err != nil {
		t.Fatalf("PrintInputLine: %v", err)
	}
	want := "\x1b[1G\x1b[2K[alice] hello\r\n"
	if got := h.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestCloseClosesHandle(t *testing.T) {
	term, h := newTestTerminal()
	if err := term.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !h.closed {
		t.Error("handle not closed")
	}
}

func TestNoOutputBeforeSize(t *testing.T) {
	h := &mockHandle{}
	term := New(h)
	term.SetPrompt("[alice] ")
	term.Input.InsertBeforeCursor([]byte("hi"))
	if err := term.PrintInputLine(); err != nil {
		t.Fatalf("PrintInputLine: %v", err)
	}
	// With no known width the text is still written, but no cursor
	// math happens.
	want := "\x1b[1G\x1b[2K[alice] hi"
	if got := h.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
