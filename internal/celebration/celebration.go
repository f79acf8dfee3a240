// Package celebration holds the transient "everything done today" state.
// The trigger is never persisted; it only tracks whether the display window
// opened by the last qualifying transition is still open.
package celebration

import (
	"sync"
	"time"
)

// Trigger is safe for concurrent use. Firing while the window is open
// restarts it.
type Trigger struct {
	mu     sync.Mutex
	window time.Duration
	until  time.Time
}

// NewTrigger returns a trigger whose window lasts for window. A non-positive
// window disables celebrations entirely.
func NewTrigger(window time.Duration) *Trigger {
	return &Trigger{window: window}
}

// Fire opens the window at now.
func (t *Trigger) Fire(now time.Time) {
	if t == nil || t.window <= 0 {
		return
	}
	t.mu.Lock()
	t.until = now.Add(t.window)
	t.mu.Unlock()
}

// Active reports whether the window is open at now.
func (t *Trigger) Active(now time.Time) bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.until.IsZero() && now.Before(t.until)
}

// Remaining returns how long the window stays open after now, or zero.
func (t *Trigger) Remaining(now time.Time) time.Duration {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.until.IsZero() || !now.Before(t.until) {
		return 0
	}
	return t.until.Sub(now)
}

// Reset closes the window.
func (t *Trigger) Reset() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.until = time.Time{}
	t.mu.Unlock()
}

// Window returns the configured display duration.
func (t *Trigger) Window() time.Duration {
	if t == nil {
		return 0
	}
	return t.window
}
