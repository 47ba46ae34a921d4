// Package ratelimit bounds how fast a member may submit messages.
package ratelimit

import (
	"time"

	"golang.org/x/time/rate"
)

const (
	perSecond = 10
	burst     = 10
)

// Limiter is a per-member token bucket: 10 messages per second with
// a burst of 10.
type Limiter struct {
	limiter *rate.Limiter
}

// New returns a full bucket.
func New() *Limiter {
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Check consumes one token. When the bucket is empty it reports the
// wait until the next token, truncated to whole seconds.
func (l *Limiter) Check() (time.Duration, bool) {
	now := time.Now()
	r := l.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
		return delay.Truncate(time.Second), false
	}
	return 0, true
}
