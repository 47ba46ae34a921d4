package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/unrenamed/chatd-sub000/internal/chat/message"
	"github.com/unrenamed/chatd-sub000/internal/chat/user"
)

// outboundCapacity bounds the per-member delivery queue. It must fit
// the MOTD plus a full history replay, since those are enqueued in
// one burst on join.
const outboundCapacity = 128

// ErrQueueFull marks a delivery dropped because the member's
// outbound queue was full.
var ErrQueueFull = errors.New("member outbound queue is full")

// Member couples a user with their delivery queue. Messages are
// rendered to strings under the room lock, with the member's own
// config, and drained by the session's render loop.
type Member struct {
	user     *user.User
	messages chan string
	exit     chan struct{}
	exitOnce sync.Once
	lastSent time.Time
}

func newMember(u *user.User) *Member {
	return &Member{
		user:     u,
		messages: make(chan string, outboundCapacity),
		exit:     make(chan struct{}),
	}
}

// Messages is the rendered outbound stream for this member.
func (m *Member) Messages() <-chan string { return m.messages }

// ExitSignal is closed when the member must be disconnected.
func (m *Member) ExitSignal() <-chan struct{} { return m.exit }

// Exit asks the session owning this member to disconnect it. Safe to
// call more than once.
func (m *Member) Exit() {
	m.exitOnce.Do(func() { close(m.exit) })
}

// User returns a snapshot safe to use outside the room lock.
func (m *Member) User() *user.User { return m.user.Clone() }

// send renders msg for this member and enqueues it without blocking.
func (m *Member) send(msg message.Message) error {
	rendered := msg.Format(&m.user.Config)
	select {
	case m.messages <- rendered:
		return nil
	default:
		return ErrQueueFull
	}
}
