// Package terminal implements the line-editing surface of a chat
// session: keycode decoding, a grapheme-aware input buffer with
// history, and a prompt renderer that repaints over a raw SSH byte
// stream.
package terminal

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

const (
	zwj  = '\u200d'
	vs16 = '\ufe0f'
)

// clusters splits s into grapheme clusters.
func clusters(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// DisplayWidth returns the number of terminal columns s occupies.
// ANSI CSI and OSC sequences are skipped; emoji joined with ZWJ or
// carrying a skin-tone modifier count as two columns.
func DisplayWidth(s string) int {
	cl := clusters(s)
	width := 0
	for i := 0; i < len(cl); i++ {
		if cl[i] == "\x1b" && i+1 < len(cl) {
			switch cl[i+1] {
			case "[":
				// CSI: parameters until a final byte in 0x40..0x7E.
				i += 2
				for i < len(cl) {
					c := cl[i]
					if len(c) == 1 && c[0] >= 0x40 && c[0] <= 0x7E {
						break
					}
					i++
				}
			case "]":
				// OSC: terminated by BEL or ESC \.
				i += 2
				for i < len(cl) {
					if cl[i] == "\a" {
						break
					}
					if cl[i] == "\x1b" && i+1 < len(cl) && cl[i+1] == "\\" {
						i++
						break
					}
					i++
				}
			}
			continue
		}
		width += clusterWidth(cl[i])
	}
	return width
}

func clusterWidth(c string) int {
	if c == string(zwj) || c == string(vs16) {
		return 0
	}
	if strings.ContainsRune(c, zwj) {
		return 2
	}
	for _, r := range c {
		if r >= 0x1F3FB && r <= 0x1F3FF {
			return 2
		}
	}
	c = strings.ReplaceAll(c, string(vs16), "")
	return runewidth.StringWidth(c)
}
