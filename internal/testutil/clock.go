// Package testutil provides deterministic test doubles shared across
// packages: clocks with controllable time for byte-stable log entries and
// last-writer-wins comparisons.
package testutil

import (
	"sync"
	"time"
)

// FixedClock always returns the same instant.
//
// Use it when a test only cares that timestamps are stable, e.g. golden
// record serialization.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.T
}

// SteppingClock returns a strictly increasing sequence of instants.
//
// Each call to Now advances the clock by Step. This gives tests distinct,
// ordered timestamps for last-writer-wins scenarios without sleeping.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type SteppingClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

// NewSteppingClock creates a clock that starts at start and advances by
// step on every Now call. The first call returns start + step.
func NewSteppingClock(start time.Time, step time.Duration) *SteppingClock {
	return &SteppingClock{t: start, step: step}
}

// Now advances the clock and returns the new instant.
func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

// Current returns the last instant handed out without advancing.
func (c *SteppingClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}
