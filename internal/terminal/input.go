package terminal

const inputHistoryCapacity = 20

// inputState is the value snapshot of the editing buffer. Cursor
// position is tracked both in grapheme clusters and in bytes so edits
// never split a cluster.
type inputState struct {
	text          string
	charCount     int
	displayWidth  int
	cursorCharPos int
	cursorBytePos int
}

// Input is a single-line editing buffer with emacs-style editing,
// kill-ring restore and submit history.
type Input struct {
	state    inputState
	snapshot *inputState
	history  *History[inputState]
}

// NewInput returns an empty buffer.
func NewInput() *Input {
	return &Input{history: NewHistory[inputState](inputHistoryCapacity)}
}

func (in *Input) Text() string      { return in.state.text }
func (in *Input) CharCount() int    { return in.state.charCount }
func (in *Input) DisplayWidth() int { return in.state.displayWidth }
func (in *Input) CursorCharPos() int { return in.state.cursorCharPos }
func (in *Input) CursorBytePos() int { return in.state.cursorBytePos }

// WidthBeforeCursor is the display width of the text left of the
// cursor, used by the renderer to position the hardware cursor.
func (in *Input) WidthBeforeCursor() int {
	return DisplayWidth(in.state.text[:in.state.cursorBytePos])
}

// Clear empties the buffer, keeping a snapshot for Restore.
func (in *Input) Clear() {
	if in.state.text == "" {
		return
	}
	prior := in.state
	in.snapshot = &prior
	in.state = inputState{}
}

// InsertBeforeCursor inserts raw bytes at the cursor.
func (in *Input) InsertBeforeCursor(b []byte) {
	s := &in.state
	s.text = s.text[:s.cursorBytePos] + string(b) + s.text[s.cursorBytePos:]
	s.charCount = len(clusters(s.text))
	s.cursorBytePos += len(b)
	s.cursorCharPos = in.byteToCharPos(s.cursorBytePos)
	s.displayWidth = DisplayWidth(s.text)
}

// RemoveBeforeCursor deletes the grapheme cluster left of the cursor.
func (in *Input) RemoveBeforeCursor() {
	s := &in.state
	if s.cursorCharPos == 0 {
		return
	}
	in.MoveCursorPrev()
	cl := clusters(s.text)
	g := cl[s.cursorCharPos]
	s.text = s.text[:s.cursorBytePos] + s.text[s.cursorBytePos+len(g):]
	s.charCount--
	s.displayWidth = DisplayWidth(s.text)
}

// RemoveLastWordBeforeCursor deletes the word left of the cursor
// along with the whitespace between it and the cursor.
func (in *Input) RemoveLastWordBeforeCursor() {
	s := &in.state
	wordEnd := s.cursorBytePos
	for wordEnd > 0 && s.text[wordEnd-1] == ' ' {
		wordEnd--
	}
	wordStart := wordEnd
	for wordStart > 0 && s.text[wordStart-1] != ' ' {
		wordStart--
	}
	if wordStart == s.cursorBytePos {
		return
	}
	prior := in.state
	in.snapshot = &prior

	s.text = s.text[:wordStart] + s.text[s.cursorBytePos:]
	s.charCount = len(clusters(s.text))
	s.displayWidth = DisplayWidth(s.text)
	s.cursorBytePos = wordStart
	s.cursorCharPos = in.byteToCharPos(wordStart)
}

// RemoveAfterCursor deletes everything right of the cursor.
func (in *Input) RemoveAfterCursor() {
	s := &in.state
	if s.cursorBytePos >= len(s.text) {
		return
	}
	prior := in.state
	in.snapshot = &prior

	s.text = s.text[:s.cursorBytePos]
	s.charCount = len(clusters(s.text))
	s.displayWidth = DisplayWidth(s.text)
}

// Restore brings back the state saved by the last destructive edit.
func (in *Input) Restore() {
	if in.snapshot == nil {
		return
	}
	in.state = *in.snapshot
	in.snapshot = nil
}

func (in *Input) MoveCursorNext() {
	s := &in.state
	if s.cursorCharPos < s.charCount {
		s.cursorCharPos++
		s.cursorBytePos = in.charToBytePos(s.cursorCharPos)
	}
}

func (in *Input) MoveCursorPrev() {
	s := &in.state
	if s.cursorCharPos > 0 {
		s.cursorCharPos--
		s.cursorBytePos = in.charToBytePos(s.cursorCharPos)
	}
}

func (in *Input) MoveCursorStart() {
	in.state.cursorCharPos = 0
	in.state.cursorBytePos = 0
}

func (in *Input) MoveCursorEnd() {
	in.state.cursorCharPos = in.state.charCount
	in.state.cursorBytePos = len(in.state.text)
}

// MoveCursorTo places the cursor at the given byte offset, snapping
// to the containing grapheme cluster.
func (in *Input) MoveCursorTo(bytePos int) {
	s := &in.state
	if bytePos > len(s.text) {
		return
	}
	s.cursorBytePos = bytePos
	s.cursorCharPos = in.byteToCharPos(bytePos)
}

// PushToHistory records the current buffer as a submitted entry.
func (in *Input) PushToHistory() {
	in.history.Push(in.state)
}

// SetHistoryPrev swaps the buffer for the previous history entry,
// keeping in-progress edits recoverable.
func (in *Input) SetHistoryPrev() {
	if !in.history.Navigating() {
		prior := in.state
		in.snapshot = &prior
	} else {
		in.history.InsertAtCurrent(in.state)
	}
	if prev, ok := in.history.Prev(); ok {
		in.state = prev
	}
}

// SetHistoryNext swaps the buffer for the next history entry, or
// restores the pre-navigation draft when stepping past the newest.
func (in *Input) SetHistoryNext() {
	in.history.InsertAtCurrent(in.state)
	if next, ok := in.history.Next(); ok {
		in.state = next
	} else {
		in.Restore()
	}
}

// byteToCharPos maps a byte offset to the index of the first cluster
// whose cumulative byte length exceeds it.
func (in *Input) byteToCharPos(bytePos int) int {
	cum := 0
	cl := clusters(in.state.text)
	for i, c := range cl {
		cum += len(c)
		if cum > bytePos {
			return i
		}
	}
	return len(cl)
}

// charToBytePos maps a cluster index to its starting byte offset.
func (in *Input) charToBytePos(charPos int) int {
	bytes := 0
	for i, c := range clusters(in.state.text) {
		if i >= charPos {
			break
		}
		bytes += len(c)
	}
	return bytes
}
