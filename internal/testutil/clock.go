// Package testutil provides deterministic helpers shared by package tests.
package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/calvinalkan/notebook/internal/autosave"
)

// Clock is a manual clock. Time only moves when the test calls [Clock.Advance]
// or [Clock.Tick]; timers scheduled with [Clock.AfterFunc] fire synchronously
// inside Advance, in deadline order.
type Clock struct {
	mu     sync.Mutex
	now    time.Time
	step   time.Duration
	seq    uint64
	timers []*Timer
}

// NewClock returns a clock initialized to a fixed UTC start time.
func NewClock() *Clock {
	return &Clock{
		now:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		step: time.Second,
	}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// Tick advances the clock by one step (1s) and returns the new time.
func (c *Clock) Tick() time.Time {
	c.Advance(c.step)

	return c.Now()
}

// Timer is a callback scheduled on a [Clock].
type Timer struct {
	clock *Clock
	at    time.Time
	seq   uint64
	fn    func()
	done  bool
}

// Stop implements [autosave.Timer].
func (t *Timer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.done {
		return false
	}

	t.done = true
	t.clock.removeLocked(t)

	return true
}

// AfterFunc implements [autosave.Clock].
func (c *Clock) AfterFunc(d time.Duration, f func()) autosave.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &Timer{clock: c, at: c.now.Add(d), seq: c.seq, fn: f}
	c.timers = append(c.timers, t)

	return t
}

// Pending returns the number of timers that have not fired or been stopped.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.timers)
}

// Advance moves time forward by d and runs every timer that became due.
// Callbacks run without the clock's lock held and may schedule new timers;
// those fire too if they fall within the advanced window.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()

		sort.Slice(c.timers, func(i, j int) bool {
			if c.timers[i].at.Equal(c.timers[j].at) {
				return c.timers[i].seq < c.timers[j].seq
			}

			return c.timers[i].at.Before(c.timers[j].at)
		})

		if len(c.timers) == 0 || c.timers[0].at.After(target) {
			c.now = target
			c.mu.Unlock()

			return
		}

		next := c.timers[0]
		c.timers = c.timers[1:]
		next.done = true
		c.now = next.at
		c.mu.Unlock()

		next.fn()
	}
}

func (c *Clock) removeLocked(t *Timer) {
	for i, other := range c.timers {
		if other == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)

			return
		}
	}
}

var _ autosave.Clock = (*Clock)(nil)
