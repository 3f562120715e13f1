// Package clock provides an abstraction for time operations to improve
// testability. Verification items carry creation timestamps that must be
// monotonically non-decreasing within a run; using the Clock interface
// instead of time.Now() directly lets tests control that sequence exactly.
package clock

import (
	"sync"
	"time"
)

// Clock is an interface for time operations.
// This allows code to be tested with mock clocks.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Stepping is a Clock for tests that starts at a fixed instant and advances
// by a fixed step on every call to Now. The resulting sequence is strictly
// increasing, which makes item-ordering assertions deterministic.
type Stepping struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// NewStepping returns a Stepping clock starting at start and advancing by
// step per Now call. A zero step yields a frozen clock.
func NewStepping(start time.Time, step time.Duration) *Stepping {
	return &Stepping{next: start, step: step}
}

// Now returns the next instant in the sequence.
func (s *Stepping) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.next
	s.next = s.next.Add(s.step)
	return now
}

// Ensure implementations satisfy Clock.
var (
	_ Clock = RealClock{}
	_ Clock = (*Stepping)(nil)
)
