// Package chat implements the single shared room: membership, the
// broadcast filter chain, replayable history and per-member rate
// limits. One coarse mutex guards all of it; messages are rendered
// per recipient while the lock is held, so delivery order matches
// lock acquisition order.
package chat

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	gossh "golang.org/x/crypto/ssh"

	"github.com/unrenamed/chatd-sub000/internal/chat/message"
	"github.com/unrenamed/chatd-sub000/internal/chat/user"
	"github.com/unrenamed/chatd-sub000/internal/ratelimit"
	"github.com/unrenamed/chatd-sub000/internal/theme"
	"github.com/unrenamed/chatd-sub000/internal/utils"
)

const historyCapacity = 20

var (
	ErrSameName  = errors.New("new name is the same as the original")
	ErrNameTaken = errors.New("name is already taken")
)

// Room is the one chat room every session joins.
type Room struct {
	mu        sync.Mutex
	names     map[int]string
	members   map[string]*Member
	ratelims  map[int]*ratelimit.Limiter
	history   *message.History
	motd      string
	createdAt time.Time
}

// NewRoom creates an empty room with the given MOTD.
func NewRoom(motd string) *Room {
	return &Room{
		names:     make(map[int]string),
		members:   make(map[string]*Member),
		ratelims:  make(map[int]*ratelimit.Limiter),
		history:   message.NewHistory(historyCapacity),
		motd:      motd,
		createdAt: time.Now(),
	}
}

// Motd returns the current message of the day.
func (r *Room) Motd() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.motd
}

// SetMotd replaces the message of the day.
func (r *Room) SetMotd(motd string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.motd = motd
}

// Uptime renders how long the room has existed.
func (r *Room) Uptime() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return utils.HumanDuration(time.Since(r.createdAt))
}

// Join adds a connection to the room. The requested name is
// sanitized; an empty or taken result is replaced with a random one.
// The joiner receives the MOTD and a history replay, the room an
// announcement.
func (r *Room) Join(id int, requestedName, sshClient string, key gossh.PublicKey, isOp bool) *Member {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := utils.SanitizeName(requestedName)
	for name == "" || r.members[name] != nil {
		name = user.RandomName()
	}

	u := user.New(id, name, sshClient, key, isOp)
	m := newMember(u)
	r.names[id] = name
	r.members[name] = m
	r.ratelims[id] = ratelimit.New()

	from := message.From(u)
	if err := m.send(message.NewSystem(from, r.motd+utils.Newline)); err != nil {
		log.Warnf("motd delivery to %s failed: %v", name, err)
	}
	for _, msg := range r.history.All() {
		if err := m.send(msg); err != nil {
			log.Warnf("history replay to %s failed: %v", name, err)
		}
	}
	r.sendLocked(message.NewAnnounce(from, fmt.Sprintf("joined. (Connected: %d)", len(r.members))))
	return m
}

// Leave removes a connection from the room, announces the departure
// and scrubs the member's id from everyone's ignore and focus sets.
func (r *Room) Leave(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.names[id]
	if !ok {
		return
	}
	m := r.members[name]
	r.sendLocked(message.NewAnnounce(message.From(m.user),
		fmt.Sprintf("left: (After %s)", utils.HumanDuration(m.user.JoinedDuration()))))

	delete(r.members, name)
	delete(r.names, id)
	delete(r.ratelims, id)
	for _, other := range r.members {
		delete(other.user.Ignored, id)
		delete(other.user.Focused, id)
	}
}

// SendMessage routes msg to its audience, applying the mute, ignore,
// focus and quiet filters. Delivery failures are logged, never
// propagated.
func (r *Room) SendMessage(msg message.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sendLocked(msg)
}

func (r *Room) sendLocked(msg message.Message) {
	from := msg.From()

	deliver := func(m *Member) {
		if err := m.send(msg); err != nil {
			log.Warnf("delivery to %s failed: %v", m.user.Username, err)
		}
	}
	mutedNotice := func() {
		if m := r.memberByID(from.ID); m != nil {
			notice := message.NewError(from, "You are muted and cannot send messages.")
			if err := m.send(notice); err != nil {
				log.Warnf("muted notice to %s failed: %v", m.user.Username, err)
			}
		}
	}

	switch m := msg.(type) {
	case message.System, message.Command, message.Error:
		if member := r.memberByID(from.ID); member != nil {
			deliver(member)
		}

	case message.Public:
		if from.IsMuted {
			mutedNotice()
			return
		}
		r.history.Push(m)
		if author := r.memberByID(from.ID); author != nil {
			author.lastSent = time.Now()
		}
		for _, member := range r.members {
			if _, ignored := member.user.Ignored[from.ID]; ignored {
				continue
			}
			if len(member.user.Focused) > 0 {
				if _, focused := member.user.Focused[from.ID]; !focused {
					continue
				}
			}
			deliver(member)
		}

	case message.Emote:
		if from.IsMuted {
			mutedNotice()
			return
		}
		r.history.Push(m)
		for _, member := range r.members {
			if _, ignored := member.user.Ignored[from.ID]; ignored {
				continue
			}
			deliver(member)
		}

	case message.Announce:
		if from.IsMuted {
			mutedNotice()
			return
		}
		r.history.Push(m)
		for _, member := range r.members {
			if member.user.Config.Quiet {
				continue
			}
			if _, ignored := member.user.Ignored[from.ID]; ignored {
				continue
			}
			deliver(member)
		}

	case message.Private:
		if from.IsMuted {
			mutedNotice()
			return
		}
		if author := r.memberByID(from.ID); author != nil {
			deliver(author)
		}
		recipient := r.memberByID(m.To.ID)
		if recipient == nil {
			return
		}
		if _, ignored := recipient.user.Ignored[from.ID]; ignored {
			return
		}
		deliver(recipient)
	}
}

func (r *Room) memberByID(id int) *Member {
	name, ok := r.names[id]
	if !ok {
		return nil
	}
	return r.members[name]
}

// CheckRateLimit consumes one message token for id. When limited it
// reports the wait until the next token.
func (r *Room) CheckRateLimit(id int) (time.Duration, bool) {
	r.mu.Lock()
	lim := r.ratelims[id]
	r.mu.Unlock()
	if lim == nil {
		return 0, true
	}
	return lim.Check()
}

// MemberCount reports how many members are connected.
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Names lists member names sorted case-insensitively.
func (r *Room) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.members))
	for name := range r.members {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

// NameByID resolves a member id to its current name.
func (r *Room) NameByID(id int) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.names[id]
	return name, ok
}

// UserByName returns a snapshot of the named member's user.
func (r *Room) UserByName(name string) (*user.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[name]
	if !ok {
		return nil, false
	}
	return m.user.Clone(), true
}

// UserByID returns a snapshot of the member's user by id.
func (r *Room) UserByID(id int) (*user.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.memberByID(id)
	if m == nil {
		return nil, false
	}
	return m.user.Clone(), true
}

// Users returns snapshots of every member's user.
func (r *Room) Users() []*user.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*user.User, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m.user.Clone())
	}
	return out
}

// FindNameByPrefix resolves a name prefix to the matching member who
// sent a message most recently, preferring anyone over skip.
func (r *Room) FindNameByPrefix(prefix, skip string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var matches []*Member
	for name, m := range r.members {
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, m)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].lastSent.After(matches[j].lastSent)
	})

	if len(matches) == 0 {
		return "", false
	}
	if matches[0].user.Username != skip {
		return matches[0].user.Username, true
	}
	if len(matches) > 1 {
		return matches[1].user.Username, true
	}
	return "", false
}

// Rename gives the member a new (already sanitized) name. The
// announcement is authored under the old name.
func (r *Room) Rename(id int, newName string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.memberByID(id)
	if m == nil {
		return nil, ErrNameTaken
	}
	oldName := m.user.Username
	if newName == oldName {
		return nil, ErrSameName
	}
	if r.members[newName] != nil {
		return nil, ErrNameTaken
	}

	r.sendLocked(message.NewAnnounce(message.From(m.user),
		fmt.Sprintf("user is now known as %s.", newName)))

	delete(r.members, oldName)
	r.members[newName] = m
	r.names[id] = newName
	m.user.SetUsername(newName)
	return m.user.Clone(), nil
}

// ExitByID signals the member's session to disconnect.
func (r *Room) ExitByID(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.memberByID(id)
	if m == nil {
		return false
	}
	m.Exit()
	return true
}

// SetAway marks the member away.
func (r *Room) SetAway(id int, reason string) {
	r.withUser(id, func(u *user.User) { u.GoAway(reason) })
}

// SetBack clears away status, reporting whether it was set.
func (r *Room) SetBack(id int) bool {
	wasAway := false
	r.withUser(id, func(u *user.User) { wasAway = u.ReturnActive() })
	return wasAway
}

// SetTheme switches the member's theme and returns the updated
// snapshot.
func (r *Room) SetTheme(id int, t theme.Theme) (*user.User, bool) {
	var snap *user.User
	ok := r.withUser(id, func(u *user.User) {
		u.SetTheme(t)
		snap = u.Clone()
	})
	return snap, ok
}

// SetTimestampMode switches the member's timestamp prefix mode.
func (r *Room) SetTimestampMode(id int, mode user.TimestampMode) {
	r.withUser(id, func(u *user.User) { u.Config.TimestampMode = mode })
}

// ToggleQuiet flips announcement suppression and reports the new
// state.
func (r *Room) ToggleQuiet(id int) bool {
	quiet := false
	r.withUser(id, func(u *user.User) {
		u.SwitchQuietMode()
		quiet = u.Config.Quiet
	})
	return quiet
}

// ToggleMute flips the named member's mute flag and returns the
// updated snapshot.
func (r *Room) ToggleMute(name string) (*user.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[name]
	if !ok {
		return nil, false
	}
	m.user.SwitchMuteMode()
	return m.user.Clone(), true
}

// SetOpByName grants or revokes operator rights of an online member.
func (r *Room) SetOpByName(name string, isOp bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[name]
	if !ok {
		return false
	}
	m.user.IsOp = isOp
	return true
}

// SetReplyTo records that fromID privately messaged targetID.
func (r *Room) SetReplyTo(targetID, fromID int) bool {
	return r.withUser(targetID, func(u *user.User) { u.SetReplyTo(fromID) })
}

// AddIgnored puts targetID on id's ignore list.
func (r *Room) AddIgnored(id, targetID int) {
	r.withUser(id, func(u *user.User) { u.Ignored[targetID] = struct{}{} })
}

// RemoveIgnored drops targetID from id's ignore list, reporting
// whether it was present.
func (r *Room) RemoveIgnored(id, targetID int) bool {
	present := false
	r.withUser(id, func(u *user.User) {
		_, present = u.Ignored[targetID]
		delete(u.Ignored, targetID)
	})
	return present
}

// AddFocused puts targetID on id's focus list, reporting whether it
// was new.
func (r *Room) AddFocused(id, targetID int) bool {
	added := false
	r.withUser(id, func(u *user.User) {
		if _, ok := u.Focused[targetID]; !ok {
			u.Focused[targetID] = struct{}{}
			added = true
		}
	})
	return added
}

// ClearFocus empties id's focus list.
func (r *Room) ClearFocus(id int) {
	r.withUser(id, func(u *user.User) { u.Focused = make(map[int]struct{}) })
}

func (r *Room) withUser(id int, fn func(u *user.User)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.memberByID(id)
	if m == nil {
		return false
	}
	fn(m.user)
	return true
}
