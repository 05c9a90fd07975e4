// Package clock abstracts wall-clock time so timestamps and cache windows can
// be driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// System is the real wall clock.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time { return time.Now() }

// Manual is a clock that only moves when told to.
//
// Safe for concurrent use.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual creates a manual clock frozen at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the frozen time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d and returns the new time.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}

// Set moves the clock to t.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Ticking is a manual clock that advances by step on every read, which
// gives each stored row a distinct, strictly increasing timestamp.
type Ticking struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewTicking creates a ticking clock starting at start.
func NewTicking(start time.Time, step time.Duration) *Ticking {
	return &Ticking{now: start, step: step}
}

// Now returns the current time and then advances by step.
func (t *Ticking) Now() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now
	t.now = t.now.Add(t.step)
	return now
}
