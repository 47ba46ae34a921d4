// Package sshd accepts SSH connections and bridges them into chat
// sessions. It wraps gliderlabs/ssh (which itself wraps
// golang.org/x/crypto/ssh) and translates transport callbacks into
// session events.
package sshd

import (
	"fmt"
	"net"
	"sync/atomic"

	"github.com/gliderlabs/ssh"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	gossh "golang.org/x/crypto/ssh"

	"github.com/unrenamed/chatd-sub000/internal/auth"
	"github.com/unrenamed/chatd-sub000/internal/session"
)

type contextKey string

const ctxPublicKey contextKey = "chatd.public-key"

// Config holds the SSH server configuration.
type Config struct {
	Host        string
	Port        int
	HostKeyPath string // empty means an ephemeral host key
	Version     string // SSH banner version
}

// Server wraps a gliderlabs/ssh server.
type Server struct {
	inner  *ssh.Server
	auth   *auth.Auth
	repo   *session.Repository
	nextID atomic.Int64
}

// NewServer creates and configures the SSH server. Clients that
// present a public key authenticate with it; keyless clients are let
// in through keyboard-interactive as long as whitelist mode is off.
func NewServer(cfg Config, a *auth.Auth, repo *session.Repository) (*Server, error) {
	signer, err := hostSigner(cfg.HostKeyPath)
	if err != nil {
		return nil, err
	}

	s := &Server{auth: a, repo: repo}
	s.inner = &ssh.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Version:     cfg.Version,
		Handler:     s.handleSession,
		HostSigners: []ssh.Signer{signer},
		PublicKeyHandler: func(ctx ssh.Context, key ssh.PublicKey) bool {
			if a.CheckBans(ctx.User(), key) {
				log.WithField("user", ctx.User()).Info("rejected banned connection")
				return false
			}
			if a.IsEnabled() && !a.IsTrusted(key) {
				log.WithField("user", ctx.User()).Info("rejected key not on the whitelist")
				return false
			}
			ctx.SetValue(ctxPublicKey, key)
			return true
		},
		KeyboardInteractiveHandler: func(ctx ssh.Context, challenger gossh.KeyboardInteractiveChallenge) bool {
			// Keyless fallback, closed in whitelist mode.
			if a.IsEnabled() {
				return false
			}
			return !a.CheckBans(ctx.User(), nil)
		},
		ConnectionFailedCallback: func(conn net.Conn, err error) {
			log.Warnf("connection from %s failed: %v", conn.RemoteAddr(), err)
		},
	}
	return s, nil
}

// ListenAndServe binds to the configured address and serves SSH
// connections until the server is closed.
func (s *Server) ListenAndServe() error {
	log.WithField("addr", s.inner.Addr).Info("listening for SSH connections")
	return s.inner.ListenAndServe()
}

// Serve accepts connections on an existing listener.
func (s *Server) Serve(l net.Listener) error {
	return s.inner.Serve(l)
}

// Close shuts down the server and every active connection.
func (s *Server) Close() error {
	return s.inner.Close()
}

// handleSession turns one SSH session into a chat session. It blocks
// until the session ends.
func (s *Server) handleSession(sess ssh.Session) {
	connID := uuid.NewString()
	id := int(s.nextID.Add(1))
	logger := log.WithFields(log.Fields{"conn": connID, "session": id, "remote": sess.RemoteAddr().String()})

	ptyReq, winCh, hasPty := sess.Pty()
	if !hasPty {
		logger.Info("rejected session without a PTY")
		fmt.Fprintf(sess, "PTY is required.\r\n")
		sess.Exit(1)
		return
	}

	key, _ := sess.Context().Value(ctxPublicKey).(ssh.PublicKey)
	events := make(chan session.Event, session.EventQueueCapacity)
	done := make(chan struct{})

	for _, kv := range sess.Environ() {
		if ev, ok := parseEnviron(kv); ok {
			send(events, ev, done)
		}
	}

	go s.readLoop(sess, events, done)
	go s.resizeLoop(winCh, events, done)

	s.repo.Run(session.NewSession{
		ID:        id,
		ConnID:    connID,
		Username:  sess.User(),
		SSHClient: sess.Context().ClientVersion(),
		IsOp:      s.auth.IsOp(key),
		PublicKey: key,
		Handle:    sess,
		Width:     ptyReq.Window.Width,
		Height:    ptyReq.Window.Height,
		Events:    events,
	})
	close(done)
	sess.Close()
	logger.Info("connection closed")
}

// readLoop forwards terminal bytes as Data events. Data is dropped
// when the session lags; the final read error becomes Disconnect.
func (s *Server) readLoop(sess ssh.Session, events chan<- session.Event, done <-chan struct{}) {
	buf := make([]byte, 1024)
	for {
		n, err := sess.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case events <- session.Data{Bytes: data}:
			case <-done:
				return
			default:
				log.Debug("session event queue full, dropping input")
			}
		}
		if err != nil {
			send(events, session.Disconnect{}, done)
			return
		}
	}
}

func (s *Server) resizeLoop(winCh <-chan ssh.Window, events chan<- session.Event, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case win, ok := <-winCh:
			if !ok {
				return
			}
			send(events, session.WindowResize{Width: win.Width, Height: win.Height}, done)
		}
	}
}

func send(events chan<- session.Event, ev session.Event, done <-chan struct{}) {
	select {
	case events <- ev:
	case <-done:
	}
}

func parseEnviron(kv string) (session.Env, bool) {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			return session.Env{Name: kv[:i], Value: kv[i+1:]}, true
		}
	}
	return session.Env{}, false
}
