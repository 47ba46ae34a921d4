// Package message defines the message variants flowing through a
// room and their per-recipient rendering. Formatting is always done
// against the recipient's config, so two members can see the same
// message with different themes, timestamps and mention highlights.
package message

import (
	"fmt"
	"strings"
	"time"

	"github.com/unrenamed/chatd-sub000/internal/chat/user"
	"github.com/unrenamed/chatd-sub000/internal/theme"
	"github.com/unrenamed/chatd-sub000/internal/utils"
)

// Author is the value snapshot of the sender taken at send time, so
// later renames or mutes do not rewrite history.
type Author struct {
	ID       int
	Username string
	IsMuted  bool
}

// From snapshots u as a message author.
func From(u *user.User) Author {
	return Author{ID: u.ID, Username: u.Username, IsMuted: u.IsMuted}
}

// Message is one routable chat message.
type Message interface {
	From() Author
	Body() string
	CreatedAt() time.Time
	// Format renders the message for one recipient.
	Format(cfg *user.Config) string
}

type base struct {
	from      Author
	body      string
	createdAt time.Time
}

func newBase(from Author, body string) base {
	return base{from: from, body: body, createdAt: time.Now()}
}

func (b base) From() Author         { return b.from }
func (b base) Body() string         { return b.body }
func (b base) CreatedAt() time.Time { return b.createdAt }

// Public is a regular room-wide message.
type Public struct{ base }

func NewPublic(from Author, body string) Public {
	return Public{newBase(from, body)}
}

func (m Public) Format(cfg *user.Config) string {
	p := cfg.Theme.Palette()
	line := fmt.Sprintf("%s: %s", p.Username(m.from.Username), highlightMentions(p, cfg, m.body))
	return withTimestamp(cfg, m.createdAt, line)
}

// Private is a direct message between two members.
type Private struct {
	base
	To Author
}

func NewPrivate(from, to Author, body string) Private {
	return Private{base: newBase(from, body), To: to}
}

func (m Private) Format(cfg *user.Config) string {
	p := cfg.Theme.Palette()
	line := fmt.Sprintf("[PM from %s] %s", p.Username(m.from.Username), p.Text(m.body))
	if cfg.Bell {
		line += "\a"
	}
	return withTimestamp(cfg, m.createdAt, line)
}

// Emote is an action line produced by /me and friends.
type Emote struct{ base }

func NewEmote(from Author, body string) Emote {
	return Emote{newBase(from, body)}
}

func (m Emote) Format(cfg *user.Config) string {
	p := cfg.Theme.Palette()
	line := p.Text(fmt.Sprintf(" ** %s %s", m.from.Username, m.body))
	return withTimestamp(cfg, m.createdAt, line)
}

// Announce is a room-lifecycle notice (joins, leaves, renames).
type Announce struct{ base }

func NewAnnounce(from Author, body string) Announce {
	return Announce{newBase(from, body)}
}

func (m Announce) Format(cfg *user.Config) string {
	p := cfg.Theme.Palette()
	line := p.System(fmt.Sprintf(" * %s %s", m.from.Username, m.body))
	return withTimestamp(cfg, m.createdAt, line)
}

// System is server output addressed to a single member.
type System struct{ base }

func NewSystem(from Author, body string) System {
	return System{newBase(from, body)}
}

func (m System) Format(cfg *user.Config) string {
	p := cfg.Theme.Palette()
	return withTimestamp(cfg, m.createdAt, p.System(fmt.Sprintf("-> %s", m.body)))
}

// Error is a refusal addressed to a single member.
type Error struct{ base }

func NewError(from Author, body string) Error {
	return Error{newBase(from, body)}
}

func (m Error) Format(cfg *user.Config) string {
	p := cfg.Theme.Palette()
	return withTimestamp(cfg, m.createdAt, p.System(fmt.Sprintf("-> Error: %s", m.body)))
}

// Command echoes a parsed command back to its author.
type Command struct{ base }

func NewCommand(from Author, body string) Command {
	return Command{newBase(from, body)}
}

func (m Command) Format(cfg *user.Config) string {
	p := cfg.Theme.Palette()
	line := fmt.Sprintf("[%s] %s", p.Username(m.from.Username), p.Text(m.body))
	return withTimestamp(cfg, m.createdAt, line)
}

func withTimestamp(cfg *user.Config, at time.Time, line string) string {
	layout := cfg.TimestampMode.Layout()
	if layout == "" {
		return line
	}
	p := cfg.Theme.Palette()
	return p.System(at.UTC().Format(layout)) + " " + line
}

// highlightMentions renders body with every literal occurrence of
// the recipient's @name tag in the tagged style.
func highlightMentions(p *theme.Palette, cfg *user.Config, body string) string {
	tag := cfg.Highlight()
	if len(tag) <= 1 {
		return p.Text(body)
	}
	matches := utils.NewKMP(tag).Search(body)
	if len(matches) == 0 {
		return p.Text(body)
	}

	var b strings.Builder
	prev := 0
	for _, idx := range matches {
		if idx < prev {
			continue
		}
		if idx > prev {
			b.WriteString(p.Text(body[prev:idx]))
		}
		b.WriteString(p.Tagged(tag))
		prev = idx + len(tag)
	}
	if prev < len(body) {
		b.WriteString(p.Text(body[prev:]))
	}
	return b.String()
}
