package service

import (
	"sync"
	"time"
)

// RestTimer is the between-set stopwatch. Completing a set resets and
// immediately restarts it.
type RestTimer struct {
	mu        sync.Mutex
	startedAt time.Time
	running   bool
	now       func() time.Time
}

// NewRestTimer creates a stopped rest timer
func NewRestTimer() *RestTimer {
	return &RestTimer{now: time.Now}
}

// Restart resets the stopwatch to zero and starts it
func (t *RestTimer) Restart() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startedAt = t.now()
	t.running = true
}

// Stop halts the stopwatch (end of workout)
func (t *RestTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
}

// Elapsed returns the time since the last restart and whether the timer is
// running at all.
func (t *RestTimer) Elapsed() (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return 0, false
	}
	return t.now().Sub(t.startedAt), true
}
