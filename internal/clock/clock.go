// Package clock provides an abstraction for time operations to improve testability.
// The timeout invoker and the scenario runner measure elapsed time through
// Clock so tests can pin durations.
package clock

import (
	"sync"
	"time"
)

// Clock is an interface for time operations.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Since returns the time elapsed since t.
	Since(t time.Time) time.Duration
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Since returns the wall-clock time elapsed since t.
func (RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// Ensure RealClock implements Clock.
var _ Clock = RealClock{}

// StepClock returns a fixed start time and advances by Step on every Now
// call. It is meant for tests that assert on reported durations and is safe
// to share between parallel scenarios.
type StepClock struct {
	Start time.Time
	Step  time.Duration

	mu    sync.Mutex
	ticks int
}

// Now returns Start plus Step for every previous call.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.Start.Add(time.Duration(c.ticks) * c.Step)
	c.ticks++
	return now
}

// Since returns the distance from t to the next tick.
func (c *StepClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

var _ Clock = (*StepClock)(nil)
