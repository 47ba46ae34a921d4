package session

import (
	"bytes"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/unrenamed/chatd-sub000/internal/auth"
	"github.com/unrenamed/chatd-sub000/internal/chat"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)

// syncHandle is a goroutine-safe sink standing in for the SSH
// channel.
type syncHandle struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (h *syncHandle) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.Write(p)
}

func (h *syncHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

func (h *syncHandle) String() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return ansiRe.ReplaceAllString(h.buf.String(), "")
}

func (h *syncHandle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

type harness struct {
	repo   *Repository
	room   *chat.Room
	handle *syncHandle
	events chan Event
	done   chan struct{}
}

func startSession(t *testing.T, name string) *harness {
	t.Helper()
	room := chat.NewRoom("welcome")
	a, err := auth.New("", "")
	if err != nil {
		t.Fatalf("auth.New: %v", err)
	}
	h := &harness{
		repo:   NewRepository(room, a, "v1.0.0-test"),
		room:   room,
		handle: &syncHandle{},
		events: make(chan Event, EventQueueCapacity),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(h.done)
		h.repo.Run(NewSession{
			ID:        1,
			ConnID:    "test-conn",
			Username:  name,
			SSHClient: "test-client",
			Handle:    h.handle,
			Width:     80,
			Height:    24,
			Events:    h.events,
		})
	}()
	waitFor(t, func() bool { return room.MemberCount() == 1 })
	return h
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func (h *harness) output(t *testing.T, want string) {
	t.Helper()
	waitFor(t, func() bool { return strings.Contains(h.handle.String(), want) })
}

func TestSessionJoinsAndRendersMotd(t *testing.T) {
	h := startSession(t, "alice")
	h.output(t, "-> welcome")
	h.output(t, "joined. (Connected: 1)")

	h.events <- Disconnect{}
	<-h.done
	if h.room.MemberCount() != 0 {
		t.Fatal("member still in room after disconnect")
	}
	if !h.handle.Closed() {
		t.Fatal("handle not closed")
	}
}

func TestSessionBroadcastsTypedLine(t *testing.T) {
	h := startSession(t, "alice")
	h.events <- Data{Bytes: []byte("hello room\r")}
	h.output(t, "alice: hello room")

	h.events <- Disconnect{}
	<-h.done
}

func TestSessionRunsCommands(t *testing.T) {
	h := startSession(t, "alice")
	h.events <- Data{Bytes: []byte("/version\r")}
	h.output(t, "-> v1.0.0-test")

	h.events <- Disconnect{}
	<-h.done
}

func TestSessionExitCommandEndsSession(t *testing.T) {
	h := startSession(t, "alice")
	h.events <- Data{Bytes: []byte("/exit\r")}
	select {
	case <-h.done:
	case <-time.After(3 * time.Second):
		t.Fatal("session did not end after /exit")
	}
	if h.room.MemberCount() != 0 {
		t.Fatal("member still in room")
	}
}

func TestSessionAppliesEnvAssignment(t *testing.T) {
	h := startSession(t, "alice")
	h.events <- Env{Name: "CHATD_TIMESTAMP", Value: "time"}
	h.output(t, "Timestamp is toggled ON, timezone is UTC")

	h.events <- Disconnect{}
	<-h.done
}

func TestSessionSurvivesResize(t *testing.T) {
	h := startSession(t, "alice")
	h.events <- WindowResize{Width: 40, Height: 12}
	h.events <- Data{Bytes: []byte("still fine\r")}
	h.output(t, "alice: still fine")

	h.events <- Disconnect{}
	<-h.done
}

func TestSessionClosedEventChannelEndsSession(t *testing.T) {
	h := startSession(t, "alice")
	close(h.events)
	select {
	case <-h.done:
	case <-time.After(3 * time.Second):
		t.Fatal("session did not end after channel close")
	}
}

func TestRepositoryTracksActiveSessions(t *testing.T) {
	h := startSession(t, "alice")
	if got := h.repo.Active(); got != 1 {
		t.Fatalf("Active = %d, want 1", got)
	}
	h.events <- Disconnect{}
	<-h.done
	if got := h.repo.Active(); got != 0 {
		t.Fatalf("Active = %d, want 0", got)
	}
}
