package engine

import (
	"sync"
	"time"
)

// Clock supplies the instants that drive ticks. Production uses the wall
// clock; tests step a manual clock so scheduling is deterministic and no
// real time elapses.
type Clock interface {
	Now() time.Time
}

// WallClock is the production clock
type WallClock struct{}

func (WallClock) Now() time.Time { return time.Now() }

// SteppedClock is a manually advanced clock for tests and deterministic
// harnesses.
type SteppedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewSteppedClock creates a clock frozen at start
func NewSteppedClock(start time.Time) *SteppedClock {
	return &SteppedClock{now: start}
}

func (c *SteppedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward
func (c *SteppedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
