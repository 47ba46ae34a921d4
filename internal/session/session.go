// Package session runs one chat session per SSH connection: it joins
// the room, feeds transport events through the workflow chain and
// renders room messages back to the client.
package session

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	gossh "golang.org/x/crypto/ssh"

	"github.com/unrenamed/chatd-sub000/internal/auth"
	"github.com/unrenamed/chatd-sub000/internal/chat"
	"github.com/unrenamed/chatd-sub000/internal/terminal"
	"github.com/unrenamed/chatd-sub000/internal/workflow"
)

// renderTick is how often buffered room messages are flushed to the
// client terminal.
const renderTick = 10 * time.Millisecond

// NewSession describes an accepted connection ready to join the chat.
type NewSession struct {
	ID        int
	ConnID    string // correlation id shared with the transport logs
	Username  string
	SSHClient string
	IsOp      bool
	PublicKey gossh.PublicKey
	Handle    terminal.Handle
	Width     int
	Height    int
	Events    <-chan Event
}

// Repository owns the shared state every session works against.
type Repository struct {
	room    *chat.Room
	auth    *auth.Auth
	version string

	mu     sync.Mutex
	active int
}

func NewRepository(room *chat.Room, a *auth.Auth, version string) *Repository {
	return &Repository{room: room, auth: a, version: version}
}

// Active reports how many sessions are currently running.
func (r *Repository) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Run drives one session to completion. It blocks until the client
// disconnects or the room signals the session to exit. Everything
// that touches the terminal happens on this goroutine; room messages
// are drained from the member's queue on a short tick.
func (r *Repository) Run(ns NewSession) {
	r.mu.Lock()
	r.active++
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.active--
		r.mu.Unlock()
	}()

	logger := log.WithFields(log.Fields{"conn": ns.ConnID, "session": ns.ID})

	member := r.room.Join(ns.ID, ns.Username, ns.SSHClient, ns.PublicKey, ns.IsOp)
	defer r.room.Leave(ns.ID)

	term := terminal.New(ns.Handle)
	term.SetSize(ns.Width, ns.Height)
	if snap, ok := r.room.UserByID(ns.ID); ok {
		term.SetPrompt(workflow.Prompt(snap))
		logger = logger.WithField("user", snap.Username)
	}
	defer term.Close()

	env := &workflow.Env{Terminal: term, Room: r.room, Auth: r.auth, Version: r.version}

	logger.Info("session started")
	r.eventLoop(env, member, ns, logger)
	r.flushMessages(term, member, logger)
	logger.Info("session ended")
}

// eventLoop dispatches transport events and flushes pending room
// messages until disconnect or exit.
func (r *Repository) eventLoop(env *workflow.Env, member *chat.Member, ns NewSession, logger *log.Entry) {
	decoder := &terminal.Decoder{}
	ticker := time.NewTicker(renderTick)
	defer ticker.Stop()

	for {
		select {
		case <-member.ExitSignal():
			return

		case <-ticker.C:
			r.flushMessages(env.Terminal, member, logger)

		case ev, ok := <-ns.Events:
			if !ok {
				return
			}
			switch e := ev.(type) {
			case Data:
				for _, key := range decoder.Feed(e.Bytes) {
					r.dispatchKey(env, ns.ID, key, logger)
				}
			case WindowResize:
				env.Terminal.SetSize(e.Width, e.Height)
				if err := env.Terminal.PrintInputLine(); err != nil {
					logger.Warnf("repaint after resize failed: %v", err)
				}
			case Env:
				r.dispatch(env, ns.ID, workflow.EnvSubmit(e.Name, e.Value), logger)
			case Disconnect:
				return
			}
		}
	}
}

func (r *Repository) dispatchKey(env *workflow.Env, id int, key terminal.Key, logger *log.Entry) {
	switch key.Kind {
	case terminal.KeyTab:
		r.dispatch(env, id, &workflow.Autocomplete{}, logger)
	case terminal.KeyEnter:
		r.dispatch(env, id, workflow.InputSubmit(), logger)
	default:
		r.dispatch(env, id, &workflow.KeyMapper{Key: key}, logger)
	}
}

func (r *Repository) dispatch(env *workflow.Env, id int, h workflow.Handler, logger *log.Entry) {
	snap, ok := r.room.UserByID(id)
	if !ok {
		return
	}
	if err := h.Execute(env, &workflow.Context{User: snap}); err != nil {
		logger.Warnf("event handling failed: %v", err)
	}
}

// flushMessages renders every queued room message above the input
// line.
func (r *Repository) flushMessages(term *terminal.Terminal, member *chat.Member, logger *log.Entry) {
	for {
		select {
		case msg := <-member.Messages():
			if err := term.PrintMessage(msg); err != nil {
				logger.Debugf("message render failed: %v", err)
				return
			}
		default:
			return
		}
	}
}
