// Package theme defines the color palettes users can pick with
// /theme. Styling is expressed with lipgloss against a fixed
// truecolor profile, since output always goes to a remote terminal
// and never to the server's own stdout.
package theme

import (
	"fmt"
	"hash/fnv"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names a palette. The zero value is not valid; use Default.
type Theme string

const (
	Colors Theme = "colors"
	Mono   Theme = "mono"
	Hacker Theme = "hacker"
)

// Default is the palette users start with.
func Default() Theme { return Colors }

// Values lists the supported themes in declaration order.
func Values() []Theme { return []Theme{Colors, Mono, Hacker} }

// FromPrefix resolves the first theme whose name starts with prefix.
func FromPrefix(prefix string) (Theme, bool) {
	for _, t := range Values() {
		if strings.HasPrefix(string(t), prefix) {
			return t, true
		}
	}
	return "", false
}

func (t Theme) String() string { return string(t) }

// Styler renders with explicit styles regardless of the process tty.
var styler = lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.TrueColor))

// Palette holds the styles a theme applies to each message part.
type Palette struct {
	text      lipgloss.Style
	system    lipgloss.Style
	tagged    lipgloss.Style
	userColor func(name string) lipgloss.Style
}

// Text styles a regular message body.
func (p *Palette) Text(s string) string { return p.text.Render(s) }

// System styles server-originated text.
func (p *Palette) System(s string) string { return p.system.Render(s) }

// Tagged styles an @mention of the reader's own name.
func (p *Palette) Tagged(s string) string { return p.tagged.Render(s) }

// Username styles a member name.
func (p *Palette) Username(name string) string {
	return p.userColor(name).Render(name)
}

// Palette returns the styles for t. Unknown themes fall back to the
// default palette.
func (t Theme) Palette() *Palette {
	switch t {
	case Mono:
		white := styler.NewStyle().Foreground(lipgloss.Color("15"))
		return &Palette{
			text:   white,
			system: white,
			tagged: styler.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8")),
			userColor: func(string) lipgloss.Style {
				return white
			},
		}
	case Hacker:
		return &Palette{
			text:   styler.NewStyle().Foreground(lipgloss.Color("10")),
			system: styler.NewStyle().Foreground(lipgloss.Color("2")),
			tagged: styler.NewStyle().Foreground(lipgloss.Color("2")).Background(lipgloss.Color("10")),
			userColor: func(string) lipgloss.Style {
				return styler.NewStyle().Foreground(lipgloss.Color("10"))
			},
		}
	default:
		return &Palette{
			text:   styler.NewStyle().Foreground(lipgloss.Color("15")),
			system: styler.NewStyle().Foreground(lipgloss.Color("8")),
			tagged: styler.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("3")).Bold(true),
			userColor: func(name string) lipgloss.Style {
				return styler.NewStyle().Foreground(usernameColor(name))
			},
		}
	}
}

// usernameColor derives a stable per-name color from the FNV-1a hash
// of the name: the low three bytes become r, g and b.
func usernameColor(name string) lipgloss.Color {
	h := fnv.New64a()
	h.Write([]byte(name))
	sum := h.Sum64()
	r := sum & 0xFF
	g := (sum >> 8) & 0xFF
	b := (sum >> 16) & 0xFF
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
}
