// Package testutil provides deterministic test doubles shared across
// packages, most importantly a fake clock for driving fade timers without
// real time.
package testutil

import (
	"sort"
	"sync"
	"time"
)

// FakeClock is a deterministic cursor.Clock for tests.
//
// Callbacks never fire on their own: Advance moves the fake time forward
// and runs every callback that has come due, in scheduling order. All
// callbacks run synchronously on the caller's goroutine, which matches the
// single-threaded ownership model of the components under test.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	due time.Duration
	seq int
	fn  func()
}

// NewFakeClock creates a fake clock at time zero.
func NewFakeClock() *FakeClock {
	return &FakeClock{}
}

// AfterFunc schedules fn to run when the clock has advanced by d.
func (c *FakeClock) AfterFunc(d time.Duration, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.timers = append(c.timers, &fakeTimer{due: c.now + d, seq: c.seq, fn: fn})
}

// Advance moves the clock forward and fires every callback due at or
// before the new time, ordered by due time then scheduling order.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d

	var due, rest []*fakeTimer
	for _, tm := range c.timers {
		if tm.due <= c.now {
			due = append(due, tm)
		} else {
			rest = append(rest, tm)
		}
	}
	c.timers = rest
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	c.mu.Unlock()

	for _, tm := range due {
		tm.fn()
	}
}

// Pending returns the number of scheduled callbacks that have not fired.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}
