package workflow

import (
	"unicode/utf8"

	"github.com/unrenamed/chatd-sub000/internal/terminal"
)

// KeyMapper applies one key press to the input buffer and repaints
// the input line. Emacs-style bindings match what terminals send.
type KeyMapper struct {
	Key terminal.Key
}

func (h *KeyMapper) Execute(env *Env, ctx *Context) error {
	in := env.Terminal.Input

	switch h.Key.Kind {
	case terminal.KeyBackspace:
		in.RemoveBeforeCursor()
	case terminal.KeyCtrlA, terminal.KeyCtrlArrowLeft, terminal.KeyHome:
		in.MoveCursorStart()
	case terminal.KeyCtrlE, terminal.KeyCtrlArrowRight, terminal.KeyEnd:
		in.MoveCursorEnd()
	case terminal.KeyCtrlW:
		in.RemoveLastWordBeforeCursor()
	case terminal.KeyCtrlK:
		in.RemoveAfterCursor()
	case terminal.KeyCtrlU:
		// ClearInput repaints on its own.
		return env.Terminal.ClearInput()
	case terminal.KeyCtrlY:
		in.Restore()
	case terminal.KeyArrowLeft, terminal.KeyCtrlB:
		in.MoveCursorPrev()
	case terminal.KeyArrowRight, terminal.KeyCtrlF:
		in.MoveCursorNext()
	case terminal.KeyArrowUp:
		in.SetHistoryPrev()
	case terminal.KeyArrowDown:
		in.SetHistoryNext()
	case terminal.KeySpace:
		in.InsertBeforeCursor([]byte(" "))
	case terminal.KeyChar:
		var buf [utf8.UTFMax]byte
		n := utf8.EncodeRune(buf[:], h.Key.Rune)
		in.InsertBeforeCursor(buf[:n])
	}
	return env.Terminal.PrintInputLine()
}
