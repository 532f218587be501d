package cursor

import "time"

// Clock schedules the ephemeral fade callbacks. Injected so tests can
// drive time deterministically (testutil.FakeClock) and so the session can
// marshal callbacks onto its event loop.
type Clock interface {
	// AfterFunc runs fn once after d has elapsed.
	AfterFunc(d time.Duration, fn func())
}

// SystemClock schedules callbacks with time.AfterFunc. Callbacks run on a
// timer goroutine; wrap it (see session's loop clock) when the tracker is
// owned by a single-threaded loop.
type SystemClock struct{}

func (SystemClock) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}
