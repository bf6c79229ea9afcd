package sweep

import (
	"sync"
	"time"
)

// Trigger collapses bursts of sweep requests into a single deferred
// invocation: fn fires once the window has elapsed since the most recent
// Request. Requests after Stop are ignored.
type Trigger struct {
	mu      sync.Mutex
	window  time.Duration
	fn      func()
	timer   *time.Timer
	stopped bool
}

func NewTrigger(window time.Duration, fn func()) *Trigger {
	return &Trigger{window: window, fn: fn}
}

func (t *Trigger) Request() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	if t.timer != nil {
		t.timer.Reset(t.window)
		return
	}
	t.timer = time.AfterFunc(t.window, t.fire)
}

func (t *Trigger) fire() {
	t.mu.Lock()
	t.timer = nil
	stopped := t.stopped
	t.mu.Unlock()
	if !stopped {
		t.fn()
	}
}

func (t *Trigger) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
