// Package clock lets the engine time operations deterministically in tests.
package clock

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system time.
type RealClock struct{}

// Now returns the current system time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Elapsed returns how long has passed on c since start.
func Elapsed(c Clock, start time.Time) time.Duration {
	return c.Now().Sub(start)
}

// SteppingClock returns a fixed sequence of instants: every call to Now
// advances the clock by Step after returning the current instant.
type SteppingClock struct {
	current time.Time
	Step    time.Duration
}

// NewSteppingClock creates a SteppingClock starting at start.
func NewSteppingClock(start time.Time, step time.Duration) *SteppingClock {
	return &SteppingClock{current: start, Step: step}
}

// Now returns the current instant and then advances by Step.
func (c *SteppingClock) Now() time.Time {
	now := c.current
	c.current = c.current.Add(c.Step)
	return now
}
