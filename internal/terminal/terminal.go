package terminal

import (
	"bytes"
	"fmt"

	"github.com/unrenamed/chatd-sub000/internal/utils"
)

// Terminal repaints a prompt-plus-input line at the bottom of a raw
// terminal and scrolls messages above it. All coordinates are
// tracked locally; the remote terminal is only ever sent relative
// movements, so no cursor position queries are needed.
type Terminal struct {
	Input *Input

	handle      Handle
	prompt      string
	promptWidth int

	buf        bytes.Buffer
	termWidth  int
	termHeight int

	cursorX, cursorY     int
	inputEndX, inputEndY int
}

// New returns a renderer writing to handle. The size is unknown until
// the first window-resize event; rendering is suppressed until then.
func New(handle Handle) *Terminal {
	return &Terminal{Input: NewInput(), handle: handle}
}

// SetPrompt replaces the prompt prefix, e.g. "[alice] ".
func (t *Terminal) SetPrompt(prompt string) {
	t.prompt = prompt
	t.promptWidth = DisplayWidth(prompt)
}

// SetSize records the remote terminal dimensions and recomputes the
// tracked cursor coordinates under the new wrap width.
func (t *Terminal) SetSize(width, height int) {
	t.termWidth = width
	t.termHeight = height
	if width == 0 {
		return
	}
	upToCursor := t.promptWidth + t.Input.WidthBeforeCursor()
	t.cursorX = upToCursor % width
	t.cursorY = upToCursor / width
	full := t.promptWidth + t.Input.DisplayWidth()
	t.inputEndX = full % width
	t.inputEndY = full / width
}

// ClearInput empties the buffer and repaints the bare prompt.
func (t *Terminal) ClearInput() error {
	t.Input.Clear()
	return t.PrintInputLine()
}

// PrintInputLine repaints the prompt and the current input.
func (t *Terminal) PrintInputLine() error {
	t.queuePromptCleanup()
	t.queueWrite(t.prompt, t.promptWidth)
	t.queueWrite(t.Input.Text(), t.Input.DisplayWidth())
	t.queueMoveCursor()
	return t.flush()
}

// PrintMessage scrolls msg in above the input line and repaints the
// prompt below it.
func (t *Terminal) PrintMessage(msg string) error {
	t.queuePromptCleanup()
	t.buf.WriteString(msg)
	t.buf.WriteString(utils.Newline)
	t.queueWrite(t.prompt, t.promptWidth)
	t.queueWrite(t.Input.Text(), t.Input.DisplayWidth())
	t.queueMoveCursor()
	return t.flush()
}

// Close tears down the underlying transport.
func (t *Terminal) Close() error {
	return t.handle.Close()
}

// queuePromptCleanup erases every line the prompt currently spans and
// leaves the cursor at the start of the topmost one.
func (t *Terminal) queuePromptCleanup() {
	if t.cursorY < t.inputEndY {
		fmt.Fprintf(&t.buf, "\x1b[%dB", t.inputEndY-t.cursorY)
	}
	t.inputEndX = 0
	t.buf.WriteString("\x1b[1G\x1b[2K")
	for t.inputEndY > 0 {
		t.buf.WriteString("\x1b[1A\x1b[2K")
		t.inputEndY--
	}
	t.cursorX = t.inputEndX
	t.cursorY = t.inputEndY
}

// queueWrite emits text and advances the tracked coordinates by its
// display width, wrapping at the terminal width.
func (t *Terminal) queueWrite(text string, width int) {
	t.buf.WriteString(text)
	t.advanceCursorPos(width)
}

func (t *Terminal) advanceCursorPos(places int) {
	if t.termWidth == 0 {
		return
	}
	t.cursorX += places
	t.cursorY += t.cursorX / t.termWidth
	t.cursorX %= t.termWidth

	t.inputEndX += places
	t.inputEndY += t.inputEndX / t.termWidth
	t.inputEndX %= t.termWidth

	// When the write ends exactly at the right edge the terminal
	// holds the cursor on the last cell; force the wrap.
	if places > 0 && t.cursorX == 0 {
		t.buf.WriteString("\r\n")
	}
}

// queueMoveCursor emits relative movements from the tracked position
// to where the input cursor belongs.
func (t *Terminal) queueMoveCursor() {
	if t.termWidth == 0 {
		return
	}
	total := t.promptWidth + t.Input.WidthBeforeCursor()
	y := total / t.termWidth
	x := total % t.termWidth

	if dy := y - t.cursorY; dy < 0 {
		fmt.Fprintf(&t.buf, "\x1b[%dA", -dy)
	} else if dy > 0 {
		fmt.Fprintf(&t.buf, "\x1b[%dB", dy)
	}
	if dx := x - t.cursorX; dx > 0 {
		fmt.Fprintf(&t.buf, "\x1b[%dC", dx)
	} else if dx < 0 {
		fmt.Fprintf(&t.buf, "\x1b[%dD", -dx)
	}
	t.cursorX = x
	t.cursorY = y
}

func (t *Terminal) flush() error {
	if t.buf.Len() == 0 {
		return nil
	}
	data := t.buf.String()
	t.buf.Reset()
	if _, err := t.handle.Write([]byte(data)); err != nil {
		return fmt.Errorf("terminal write: %w", err)
	}
	return nil
}

// Prompt returns the current prompt string.
func (t *Terminal) Prompt() string { return t.prompt }
