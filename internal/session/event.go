package session

// EventQueueCapacity bounds the per-session event queue. The
// transport drops terminal data when the session falls this far
// behind rather than stalling the connection read loop.
const EventQueueCapacity = 100

// Event is one transport-level occurrence delivered to a session.
type Event interface{ isEvent() }

type (
	// Data carries raw terminal bytes from the client.
	Data struct{ Bytes []byte }
	// WindowResize reports a PTY window change.
	WindowResize struct{ Width, Height int }
	// Env carries an SSH environment assignment.
	Env struct{ Name, Value string }
	// Disconnect reports that the connection is gone. It is always
	// the last event of a session.
	Disconnect struct{}
)

func (Data) isEvent()         {}
func (WindowResize) isEvent() {}
func (Env) isEvent()          {}
func (Disconnect) isEvent()   {}
