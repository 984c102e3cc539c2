package valuation

import (
	"sync"
	"time"
)

// Clock holds an evaluation date. Every change bumps Version so dependents
// can tell their cached values are stale.
type Clock struct {
	mu      sync.RWMutex
	date    time.Time
	version uint64
}

// NewClock starts a clock at date, truncated to UTC midnight.
func NewClock(date time.Time) *Clock {
	return &Clock{date: midnight(date)}
}

var defaultClock = NewClock(time.Now())

// Default returns the process-wide clock, started at today's date.
func Default() *Clock {
	return defaultClock
}

// Date returns the evaluation date.
func (c *Clock) Date() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.date
}

// Version increases on every change of the evaluation date.
func (c *Clock) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Snapshot returns the date and version read together.
func (c *Clock) Snapshot() (time.Time, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.date, c.version
}

// Set moves the evaluation date. Setting the current date is a no-op.
func (c *Clock) Set(date time.Time) {
	date = midnight(date)
	c.mu.Lock()
	defer c.mu.Unlock()
	if date.Equal(c.date) {
		return
	}
	c.date = date
	c.version++
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
