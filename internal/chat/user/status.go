package user

import "time"

// Status tracks presence. A user is either active or away with a
// reason.
type Status struct {
	Away   bool
	Reason string
	Since  time.Time
}
