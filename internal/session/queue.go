package session

import "sync"

// eventKind distinguishes queued work.
type eventKind int

const (
	// eventFrame is a raw inbound transport frame.
	eventFrame eventKind = iota + 1
	// eventCall is a closure marshalled onto the loop (fade-timer
	// expiries, local edits from other goroutines).
	eventCall
)

type event struct {
	kind  eventKind
	frame []byte
	call  func()
}

// eventQueue is a thread-safe FIFO queue feeding the session's
// single-writer loop.
//
// The queue is unbounded: the relay can burst edits faster than a handler
// runs, and dropping frames here would desynchronize the mirror. A channel
// signals availability so Run can wait with context awareness; the buffer
// of one coalesces multiple signals.
type eventQueue struct {
	mu     sync.Mutex
	events []event
	closed bool
	signal chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]event, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, e)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes and returns the front event without blocking.
func (q *eventQueue) TryDequeue() (event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return event{}, false
	}
	e := q.events[0]
	q.events = q.events[1:]
	return e, true
}

// Wait returns the signal channel. It closes when the queue closes, which
// wakes any waiter immediately.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of pending events.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close marks the queue closed and wakes waiters. Idempotent.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
