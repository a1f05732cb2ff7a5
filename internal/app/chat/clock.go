package chat

import (
	"sync"
	"time"
)

// Clock issues strictly increasing message timestamps. Values are unix
// milliseconds, bumped by one whenever the wall clock has not advanced since
// the previous call, so ties between near-simultaneous messages are broken by
// arrival order rather than wall-clock precision.
type Clock struct {
	mu   sync.Mutex
	last int64
}

// NewClock returns a ready-to-use Clock.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next timestamp. Safe for concurrent use.
func (c *Clock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixMilli()
	if now <= c.last {
		now = c.last + 1
	}
	c.last = now

	return now
}
