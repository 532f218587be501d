package session

import (
	"context"
	"time"
)

// HandleFrame enqueues one raw inbound frame for the loop. Thread-safe;
// the transport read goroutine calls this. Returns false when the session
// has terminated.
func (s *Session) HandleFrame(raw []byte) bool {
	frame := append([]byte(nil), raw...)
	return s.queue.Enqueue(event{kind: eventFrame, frame: frame})
}

// Call marshals a closure onto the loop goroutine. Thread-safe; fade
// timers and UI threads use this to touch session state without races.
// Returns false when the session has terminated.
func (s *Session) Call(fn func()) bool {
	return s.queue.Enqueue(event{kind: eventCall, call: fn})
}

// Run drains the event queue until the context is canceled or the session
// terminates. It owns all session state while it runs; everything else
// must go through HandleFrame or Call.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("session loop started", "session", s.token, "profile", s.profile.Name)
	defer s.logger.Info("session loop stopped", "session", s.token)

	for {
		for {
			e, ok := s.queue.TryDequeue()
			if !ok {
				break
			}
			s.processEvent(e)
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if s.terminated {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-s.queue.Wait():
			if !ok && s.queue.Len() == 0 {
				return nil
			}
		}
	}
}

// Stop ends the loop after pending events drain. Thread-safe, idempotent.
func (s *Session) Stop() {
	s.queue.Close()
}

func (s *Session) processEvent(e event) {
	switch e.kind {
	case eventFrame:
		s.Dispatch(e.frame)
	case eventCall:
		e.call()
	}
}

// loopClock routes fade-timer expiries through the event loop so tracker
// state is only ever touched from the loop goroutine. Expiries after
// termination are dropped, which is fine: a terminated session renders
// nothing.
type loopClock struct {
	s *Session
}

func (c *loopClock) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { c.s.Call(fn) })
}
