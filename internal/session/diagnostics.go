package session

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/roach88/mirrorpad/internal/doc"
	"github.com/roach88/mirrorpad/internal/engine"
	"github.com/roach88/mirrorpad/internal/protocol"
)

// Diagnostic is one reported per-message failure. Unresolvable conditions
// always surface here - never as a silent desynchronization - so tests can
// assert that a given malformed message produces a specific report.
type Diagnostic struct {
	Code    string
	Action  protocol.Action
	UserID  protocol.UserID
	Message string
	Fatal   bool
}

// Sink receives diagnostics. Report is always called from the session's
// event loop goroutine.
type Sink interface {
	Report(d Diagnostic)
}

// SlogSink logs diagnostics through slog.
type SlogSink struct {
	Logger *slog.Logger
}

func (s SlogSink) Report(d Diagnostic) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{
		"code", d.Code,
		"action", d.Action,
		"user_id", d.UserID,
		"detail", d.Message,
	}
	if d.Fatal {
		logger.Error("session diagnostic", attrs...)
		return
	}
	logger.Warn("session diagnostic", attrs...)
}

// RecordingSink captures diagnostics for assertions in tests.
type RecordingSink struct {
	mu    sync.Mutex
	diags []Diagnostic
}

func (r *RecordingSink) Report(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = append(r.diags, d)
}

// All returns the reported diagnostics in order.
func (r *RecordingSink) All() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, len(r.diags))
	copy(out, r.diags)
	return out
}

// diagnose maps a handler error onto the diagnostic taxonomy.
func diagnose(err error, m *protocol.Message) Diagnostic {
	d := Diagnostic{Code: "INTERNAL", Message: err.Error()}
	if m != nil {
		d.Action = m.Action
		d.UserID = m.UserID
	}

	var pe *protocol.ProtocolError
	var ue *doc.UnknownIDError
	var de *doc.DuplicateIDError
	var ae *engine.UnknownActionError
	switch {
	case errors.As(err, &pe):
		d.Code = string(pe.Code)
		d.Fatal = pe.Fatal
		if d.Action == "" {
			d.Action = pe.Action
		}
	case errors.As(err, &ue):
		d.Code = "UNKNOWN_ID"
	case errors.As(err, &de):
		d.Code = "DUPLICATE_ID"
	case errors.As(err, &ae):
		d.Code = "UNKNOWN_ACTION"
	}
	return d
}
