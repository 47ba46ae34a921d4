package terminal

import "io"

// Handle is the outbound byte stream of one session. The renderer is
// the only writer; Close tears the transport down.
type Handle interface {
	io.Writer
	Close() error
}
