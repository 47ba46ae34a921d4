package terminal

import "unicode/utf8"

// KeyKind classifies a decoded key press.
type KeyKind int

const (
	KeyChar KeyKind = iota
	KeySpace
	KeyTab
	KeyEnter
	KeyBackspace
	KeyCtrlA
	KeyCtrlB
	KeyCtrlD
	KeyCtrlE
	KeyCtrlF
	KeyCtrlK
	KeyCtrlU
	KeyCtrlW
	KeyCtrlY
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyHome
	KeyEnd
	KeyCtrlArrowLeft
	KeyCtrlArrowRight
)

// Key is one decoded key press. Rune is set for KeyChar only.
type Key struct {
	Kind KeyKind
	Rune rune
}

// Decoder turns the raw byte stream of a terminal in raw mode into
// key presses. Escape sequences and multi-byte UTF-8 runes may arrive
// split across reads, so undecodable tails are buffered until the
// next feed.
type Decoder struct {
	pending []byte
}

// Feed appends data to the pending buffer and returns every key that
// can be decoded from it. Unrecognized escape sequences are dropped.
func (d *Decoder) Feed(data []byte) []Key {
	d.pending = append(d.pending, data...)

	var keys []Key
	for len(d.pending) > 0 {
		key, n, ok := d.decodeOne()
		if n == 0 {
			// Incomplete sequence, wait for more bytes.
			break
		}
		d.pending = d.pending[n:]
		if ok {
			keys = append(keys, key)
		}
	}
	return keys
}

// decodeOne decodes the first key in the pending buffer. It returns
// the consumed byte count, zero when more bytes are needed, and
// ok=false for bytes that do not map to a key.
func (d *Decoder) decodeOne() (Key, int, bool) {
	b := d.pending[0]

	if b == 0x1b {
		return d.decodeEscape()
	}

	switch b {
	case ' ':
		return Key{Kind: KeySpace}, 1, true
	case '\t':
		return Key{Kind: KeyTab}, 1, true
	case '\r', '\n':
		return Key{Kind: KeyEnter}, 1, true
	case 0x7f, 0x08:
		return Key{Kind: KeyBackspace}, 1, true
	case 0x01:
		return Key{Kind: KeyCtrlA}, 1, true
	case 0x02:
		return Key{Kind: KeyCtrlB}, 1, true
	case 0x04:
		return Key{Kind: KeyCtrlD}, 1, true
	case 0x05:
		return Key{Kind: KeyCtrlE}, 1, true
	case 0x06:
		return Key{Kind: KeyCtrlF}, 1, true
	case 0x0b:
		return Key{Kind: KeyCtrlK}, 1, true
	case 0x15:
		return Key{Kind: KeyCtrlU}, 1, true
	case 0x17:
		return Key{Kind: KeyCtrlW}, 1, true
	case 0x19:
		return Key{Kind: KeyCtrlY}, 1, true
	}

	if b < 0x20 {
		// Other control bytes carry no binding.
		return Key{}, 1, false
	}

	if !utf8.FullRune(d.pending) {
		if len(d.pending) < utf8.UTFMax {
			return Key{}, 0, false
		}
		return Key{}, 1, false
	}
	r, size := utf8.DecodeRune(d.pending)
	if r == utf8.RuneError && size == 1 {
		return Key{}, 1, false
	}
	return Key{Kind: KeyChar, Rune: r}, size, true
}

func (d *Decoder) decodeEscape() (Key, int, bool) {
	if len(d.pending) < 2 {
		return Key{}, 0, false
	}
	if d.pending[1] != '[' {
		// Lone ESC or an alt-modified key, neither is bound.
		return Key{}, 1, false
	}

	// CSI: ESC [ parameters final-byte, final byte in 0x40..0x7E.
	end := -1
	for i := 2; i < len(d.pending); i++ {
		if d.pending[i] >= 0x40 && d.pending[i] <= 0x7e {
			end = i
			break
		}
	}
	if end == -1 {
		return Key{}, 0, false
	}

	seq := string(d.pending[2 : end+1])
	n := end + 1

	switch seq {
	case "A":
		return Key{Kind: KeyArrowUp}, n, true
	case "B":
		return Key{Kind: KeyArrowDown}, n, true
	case "C":
		return Key{Kind: KeyArrowRight}, n, true
	case "D":
		return Key{Kind: KeyArrowLeft}, n, true
	case "H", "1~":
		return Key{Kind: KeyHome}, n, true
	case "F", "4~":
		return Key{Kind: KeyEnd}, n, true
	case "1;5C":
		return Key{Kind: KeyCtrlArrowRight}, n, true
	case "1;5D":
		return Key{Kind: KeyCtrlArrowLeft}, n, true
	}
	return Key{}, n, false
}
