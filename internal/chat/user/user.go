// Package user models a chat member: identity, presence, moderation
// flags and per-user presentation config.
package user

import (
	"fmt"
	"time"

	gossh "golang.org/x/crypto/ssh"

	"github.com/unrenamed/chatd-sub000/internal/theme"
	"github.com/unrenamed/chatd-sub000/internal/utils"
)

// User is one member of the room. Instances are owned by the room
// and handed out only as deep copies, so readers never race with the
// broadcast path.
type User struct {
	ID        int
	Username  string
	Status    Status
	JoinedAt  time.Time
	SSHClient string
	PublicKey gossh.PublicKey
	ReplyTo   *int
	Config    Config
	IsOp      bool
	IsMuted   bool
	Ignored   map[int]struct{}
	Focused   map[int]struct{}
}

// New creates an active user with default config.
func New(id int, username, sshClient string, key gossh.PublicKey, isOp bool) *User {
	u := &User{
		ID:        id,
		Username:  username,
		JoinedAt:  time.Now(),
		SSHClient: sshClient,
		PublicKey: key,
		Config:    NewConfig(),
		IsOp:      isOp,
		Ignored:   make(map[int]struct{}),
		Focused:   make(map[int]struct{}),
	}
	u.Config.refresh(username)
	return u
}

// SetUsername renames the user and refreshes the cached display name
// and mention tag.
func (u *User) SetUsername(name string) {
	u.Username = name
	u.Config.refresh(name)
}

// SetTheme switches the palette and restyles the display name.
func (u *User) SetTheme(t theme.Theme) {
	u.Config.Theme = t
	u.Config.refresh(u.Username)
}

// GoAway marks the user away with a reason.
func (u *User) GoAway(reason string) {
	u.Status = Status{Away: true, Reason: reason, Since: time.Now()}
}

// ReturnActive clears away status and reports whether it was set.
func (u *User) ReturnActive() bool {
	wasAway := u.Status.Away
	u.Status = Status{}
	return wasAway
}

// SwitchMuteMode toggles the operator-imposed mute flag.
func (u *User) SwitchMuteMode() { u.IsMuted = !u.IsMuted }

// SwitchQuietMode toggles suppression of room announcements.
func (u *User) SwitchQuietMode() { u.Config.Quiet = !u.Config.Quiet }

// SetReplyTo records who most recently messaged this user.
func (u *User) SetReplyTo(id int) { u.ReplyTo = &id }

// JoinedDuration is the time since the user joined.
func (u *User) JoinedDuration() time.Duration {
	return time.Since(u.JoinedAt)
}

// Fingerprint is the SHA256 fingerprint of the user's public key.
func (u *User) Fingerprint() (string, bool) {
	if u.PublicKey == nil {
		return "", false
	}
	return gossh.FingerprintSHA256(u.PublicKey), true
}

// String renders the /whois card.
func (u *User) String() string {
	fingerprint := "(no public key)"
	if fp, ok := u.Fingerprint(); ok {
		fingerprint = fp
	}
	s := fmt.Sprintf("name: %s%s > fingerprint: %s%s > client: %s%s > joined: %s ago",
		u.Username, utils.Newline,
		fingerprint, utils.Newline,
		u.SSHClient, utils.Newline,
		utils.HumanDuration(u.JoinedDuration()))
	if u.Status.Away {
		s += fmt.Sprintf("%s > away (%s ago) %s",
			utils.Newline, utils.HumanDuration(time.Since(u.Status.Since)), u.Status.Reason)
	}
	return s
}

// Clone returns a deep copy safe to use outside the room lock.
func (u *User) Clone() *User {
	c := *u
	if u.ReplyTo != nil {
		id := *u.ReplyTo
		c.ReplyTo = &id
	}
	c.Ignored = make(map[int]struct{}, len(u.Ignored))
	for id := range u.Ignored {
		c.Ignored[id] = struct{}{}
	}
	c.Focused = make(map[int]struct{}, len(u.Focused))
	for id := range u.Focused {
		c.Focused[id] = struct{}{}
	}
	return &c
}
