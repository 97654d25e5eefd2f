// Package autosave implements the debounced save used by editor sessions.
//
// A [Debouncer] holds at most one pending action. Every [Debouncer.Trigger]
// replaces the pending action and restarts the quiet period, so only the last
// action of a burst runs. [Debouncer.Flush] runs the pending action right away
// for explicit saves.
package autosave

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period after the last edit before a save runs.
const DefaultDelay = 600 * time.Millisecond

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop prevents the callback from running. Returns false if it already
	// ran or was stopped.
	Stop() bool
}

// Clock schedules delayed callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock schedules callbacks with [time.AfterFunc].
type RealClock struct{}

// AfterFunc implements [Clock].
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer delays an action until no new trigger arrived for the configured
// delay. Safe for concurrent use; the action runs without the internal lock
// held, on the clock's callback goroutine or on the caller of Flush.
type Debouncer struct {
	delay time.Duration
	clock Clock

	mu      sync.Mutex
	timer   Timer
	pending func()
	gen     uint64
}

// New returns a Debouncer with the given quiet period.
// A nil clock means [RealClock]; a non-positive delay means [DefaultDelay].
func New(delay time.Duration, clock Clock) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}

	if clock == nil {
		clock = RealClock{}
	}

	return &Debouncer{delay: delay, clock: clock}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger cancels any pending action and schedules fn after the quiet period.
func (d *Debouncer) Trigger(fn func()) {
	if fn == nil {
		panic("autosave: nil action")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()

	d.gen++
	gen := d.gen
	d.pending = fn
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Flush runs the pending action now. Returns false if nothing was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.takeLocked()
	d.mu.Unlock()

	if fn == nil {
		return false
	}

	fn()

	return true
}

// Cancel drops the pending action without running it.
// Returns false if nothing was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.takeLocked() != nil
}

// Pending reports whether an action is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.pending != nil
}

// fire runs the action scheduled as generation gen. A timer that lost the
// race against a newer Trigger, Flush or Cancel finds a different generation
// and does nothing.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()

	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()

		return
	}

	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

func (d *Debouncer) takeLocked() func() {
	fn := d.pending
	d.stopLocked()
	d.gen++

	return fn
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.pending = nil
}
