package session

import (
	"sync"
	"time"
)

// debouncer holds a single deferred action. Arming it again replaces the
// pending action, so at most one callback is scheduled at any time.
type debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
}

// Arm schedules fn to run after delay, cancelling any pending schedule.
// The callback runs on its own goroutine.
func (d *debouncer) Arm(delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(delay, fn)
}

// Stop cancels the pending schedule, if any. A callback that has already
// started is not interrupted; staleness is handled by the caller.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
