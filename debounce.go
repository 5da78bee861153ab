package rndmap

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into a single deferred call.
// Every Trigger restarts the delay, so fn runs once the triggers stop for
// the configured interval. The same abstraction backs query debouncing and
// any other delayed side effect that must be cancelable on teardown.
//
// fn is always invoked without the internal lock held, so it may call back
// into the owner of the Debouncer.
type Debouncer struct {
	interval time.Duration
	fn       func()

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a debouncer invoking fn after interval of quiet.
// A non-positive interval makes Trigger invoke fn synchronously.
func NewDebouncer(interval time.Duration, fn func()) *Debouncer {
	return &Debouncer{interval: interval, fn: fn}
}

// Trigger schedules fn after the interval, superseding any pending run.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.interval <= 0 {
		d.mu.Unlock()
		d.fn()
		return
	}
	d.timer = time.AfterFunc(d.interval, func() { d.fire(gen) })
	d.mu.Unlock()
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		// Superseded or stopped after the timer fired.
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.fn()
}

// Flush runs a pending fn now instead of waiting out the interval.
// It is a no-op when nothing is pending.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.gen++
	d.timer.Stop()
	d.timer = nil
	d.mu.Unlock()
	d.fn()
}

// Stop cancels any pending run without invoking fn. The debouncer stays
// usable; a later Trigger arms it again.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
}

// Pending reports whether a run is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
