package app

import (
	"sync"
	"time"
)

// MonotonicClock hands out UTC timestamps that never go backwards within the
// process, so creation times stay non-decreasing in insertion order.
type MonotonicClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewMonotonicClock wraps now. A nil now uses time.Now.
func NewMonotonicClock(now func() time.Time) *MonotonicClock {
	if now == nil {
		now = time.Now
	}
	return &MonotonicClock{now: now}
}

// Now returns the later of the wall clock and the last value returned.
func (c *MonotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond) // postgres timestamptz precision
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}
