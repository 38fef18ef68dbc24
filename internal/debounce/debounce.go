// Package debounce provides a cancellable delayed call and a trailing-edge
// debouncer built on it.
package debounce

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// CancelFunc stops a scheduled call. It reports whether the call was
// stopped before it ran. Calling it more than once is safe.
type CancelFunc func() bool

// Schedule runs fn once after delay on clock.
func Schedule(clock clockwork.Clock, delay time.Duration, fn func()) CancelFunc {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	timer := clock.AfterFunc(delay, fn)
	return timer.Stop
}

// Debouncer coalesces bursts of triggers: only the last trigger within the
// delay window runs, delay after it arrived.
type Debouncer struct {
	clock clockwork.Clock
	delay time.Duration

	mu      sync.Mutex
	cancel  CancelFunc
	seq     uint64
	stopped bool
}

// New creates a Debouncer. A nil clock uses the real clock.
func New(clock clockwork.Clock, delay time.Duration) *Debouncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Debouncer{clock: clock, delay: delay}
}

// Trigger replaces any pending call with fn.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.seq++
	seq := d.seq
	d.cancel = Schedule(d.clock, d.delay, func() {
		d.mu.Lock()
		current := !d.stopped && d.seq == seq
		if current {
			d.cancel = nil
		}
		d.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Flush cancels the pending call and reports whether one was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	pending := d.cancel != nil
	if pending {
		d.cancel()
		d.cancel = nil
		d.seq++
	}
	return pending
}

// Pending reports whether a call is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}

// Stop cancels any pending call and makes later triggers no-ops.
func (d *Debouncer) Stop() {
	d.Flush()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}
