package session

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/roach88/mirrorpad/internal/cursor"
	"github.com/roach88/mirrorpad/internal/doc"
	"github.com/roach88/mirrorpad/internal/protocol"
	"github.com/roach88/mirrorpad/internal/text"
)

// LegacyProblemID is the implicit document id for single-document
// deployments, where the relay never enumerates problems.
const LegacyProblemID doc.ProblemID = 1

// Sender emits outbound messages on the transport.
type Sender interface {
	Send(*protocol.Message) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(*protocol.Message) error

func (f SenderFunc) Send(m *protocol.Message) error { return f(m) }

// LifecycleFunc receives game-lifecycle messages (chat, vote, role,
// result, others' submissions) that the core recognizes but does not
// process.
type LifecycleFunc func(*protocol.Message)

// Archiver persists the session's solutions at game end.
type Archiver interface {
	SaveGame(sessionToken string, solutions []Solution) error
}

// Solution is one document's final state, submitted at game end.
type Solution struct {
	ProblemID  doc.ProblemID
	Prompt     string
	Difficulty int
	Lines      []string
}

type handler func(*Session, *protocol.Message) error

// Session is the explicit context object for one connection to the relay:
// identity, documents, peer cursors, and the dispatch loop. Created at
// bootstrap scope, torn down at disconnect; there is no ambient global
// state.
//
// All methods except HandleFrame, Call, Run and Stop must be called from
// the event loop goroutine (or from a single test goroutine driving
// Dispatch directly).
type Session struct {
	profile   protocol.Profile
	store     *doc.Store
	tracker   *cursor.Tracker
	diags     Sink
	out       Sender
	lifecycle LifecycleFunc
	archiver  Archiver
	logger    *slog.Logger

	token    string
	identity *protocol.Identity

	queue      *eventQueue
	handlers   map[protocol.Action]handler
	terminated bool
}

type settings struct {
	surface    doc.Surface
	projector  cursor.Projector
	policy     cursor.Policy
	fadeWindow time.Duration
	fontSize   int
	clock      cursor.Clock
	diags      Sink
	lifecycle  LifecycleFunc
	archiver   Archiver
	logger     *slog.Logger
	tokens     TokenGenerator
}

// Option configures a Session.
type Option func(*settings)

// WithSurface binds the visible editor surface.
func WithSurface(s doc.Surface) Option {
	return func(o *settings) { o.surface = s }
}

// WithProjector injects the position-to-screen projection.
func WithProjector(p cursor.Projector) Option {
	return func(o *settings) { o.projector = p }
}

// WithCursorPolicy selects the indicator lifetime policy.
func WithCursorPolicy(p cursor.Policy) Option {
	return func(o *settings) { o.policy = p }
}

// WithFadeWindow overrides the ephemeral fade timeout.
func WithFadeWindow(d time.Duration) Option {
	return func(o *settings) { o.fadeWindow = d }
}

// WithFontSize sets the initial editor font size.
func WithFontSize(px int) Option {
	return func(o *settings) { o.fontSize = px }
}

// WithClock injects the fade clock. The default clock runs expiries
// through the event loop; tests inject testutil.FakeClock.
func WithClock(c cursor.Clock) Option {
	return func(o *settings) { o.clock = c }
}

// WithDiagnostics sets the diagnostics sink.
func WithDiagnostics(s Sink) Option {
	return func(o *settings) { o.diags = s }
}

// WithLifecycle sets the game-lifecycle callback.
func WithLifecycle(fn LifecycleFunc) Option {
	return func(o *settings) { o.lifecycle = fn }
}

// WithArchiver enables local archiving of submitted solutions.
func WithArchiver(a Archiver) Option {
	return func(o *settings) { o.archiver = a }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *settings) { o.logger = l }
}

// WithTokens injects the session token generator.
func WithTokens(g TokenGenerator) Option {
	return func(o *settings) { o.tokens = g }
}

// New creates a session speaking the given deployment profile, emitting
// outbound messages through out (nil for a receive-only mirror).
//
// Profiles without a bootstrap handshake start pre-bootstrapped on one
// implicit document (LegacyProblemID).
func New(profile protocol.Profile, out Sender, opts ...Option) *Session {
	set := settings{
		policy:     cursor.PolicyPersistent,
		fadeWindow: cursor.DefaultFadeWindow,
		fontSize:   cursor.DefaultFontSize,
		logger:     slog.Default(),
		tokens:     UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(&set)
	}
	if set.diags == nil {
		set.diags = SlogSink{Logger: set.logger}
	}

	s := &Session{
		profile:   profile,
		diags:     set.diags,
		out:       out,
		lifecycle: set.lifecycle,
		archiver:  set.archiver,
		logger:    set.logger,
		token:     set.tokens.Generate(),
		queue:     newEventQueue(),
		handlers:  defaultHandlers(),
	}

	clock := set.clock
	if clock == nil {
		clock = &loopClock{s: s}
	}
	s.store = doc.NewStore(set.surface)
	s.tracker = cursor.NewTracker(set.projector,
		cursor.WithPolicy(set.policy),
		cursor.WithFadeWindow(set.fadeWindow),
		cursor.WithFontSize(set.fontSize),
		cursor.WithClock(clock),
	)

	if !profile.Bootstrap {
		// Single-document deployments have no assign_id; the one document
		// exists from the start.
		if _, err := s.store.Create(LegacyProblemID, "", 0); err == nil {
			_ = s.store.Activate(LegacyProblemID)
			s.tracker.SetActiveDoc(LegacyProblemID)
		}
	}
	return s
}

// Token returns the local session token.
func (s *Session) Token() string {
	return s.token
}

// Identity returns the relay-assigned identity, if bootstrapped.
func (s *Session) Identity() (protocol.Identity, bool) {
	if s.identity == nil {
		return protocol.Identity{}, false
	}
	return *s.identity, true
}

// Store exposes the document store for surface wiring and tests.
func (s *Session) Store() *doc.Store {
	return s.store
}

// Tracker exposes the peer cursor tracker for rendering and tests.
func (s *Session) Tracker() *cursor.Tracker {
	return s.tracker
}

// Terminated reports whether a fatal protocol error ended the session.
func (s *Session) Terminated() bool {
	return s.terminated
}

// Dispatch decodes, validates, and routes one inbound frame. It runs
// synchronously and must be called from the loop goroutine; external
// callers use HandleFrame.
func (s *Session) Dispatch(raw []byte) {
	if s.terminated {
		return
	}

	m, err := protocol.Decode(raw, s.profile)
	if err != nil {
		s.fail(err, nil)
		return
	}

	// Self-echo suppression: the relay broadcasts every message back to
	// its sender. Without this check a local edit would re-apply and loop.
	if m.Action != protocol.ActionAssignID && s.identity != nil && m.UserID == s.identity.UserID {
		return
	}

	h, ok := s.handlers[m.Action]
	if !ok {
		s.diags.Report(Diagnostic{
			Code:    "UNKNOWN_ACTION",
			Action:  m.Action,
			UserID:  m.UserID,
			Message: "unrecognized action tag",
		})
		return
	}
	if err := h(s, m); err != nil {
		s.fail(err, m)
	}
}

// fail reports an error and terminates the session when it is fatal.
func (s *Session) fail(err error, m *protocol.Message) {
	d := diagnose(err, m)
	s.diags.Report(d)
	if d.Fatal {
		s.terminate()
	}
}

func (s *Session) terminate() {
	s.terminated = true
	s.queue.Close()
}

// ActivateDocument switches the visible document: the surface is rebound
// and every peer cursor is re-evaluated against the new active id.
func (s *Session) ActivateDocument(id doc.ProblemID) error {
	if err := s.store.Activate(id); err != nil {
		return err
	}
	s.tracker.SetActiveDoc(id)
	return nil
}

// SetViewport records new viewport bounds (scroll or resize) and
// recomputes indicator visibility.
func (s *Session) SetViewport(v text.Viewport) {
	s.tracker.RecomputeVisibility(v)
}

// SetFontSize rescales cursor glyphs and recomputes visibility.
func (s *Session) SetFontSize(px int) {
	s.tracker.SetFontSize(px)
}

// LocalInsert emits a local insert captured from the editor's change
// event. The widget has already mutated the surface buffer; nothing is
// applied locally.
func (s *Session) LocalInsert(start, end text.Position, lines []string) error {
	id, err := s.outboundIdentity()
	if err != nil {
		return err
	}
	return s.send(protocol.NewInsert(id, s.outboundProblem(), start, end, lines))
}

// LocalRemove emits a local removal captured from the editor's change
// event.
func (s *Session) LocalRemove(start, end text.Position) error {
	id, err := s.outboundIdentity()
	if err != nil {
		return err
	}
	return s.send(protocol.NewRemove(id, s.outboundProblem(), start, end))
}

// LocalCursorMove emits the local caret position.
func (s *Session) LocalCursorMove(pos text.Position) error {
	id, err := s.outboundIdentity()
	if err != nil {
		return err
	}
	return s.send(protocol.NewCursorMove(id, s.outboundProblem(), pos))
}

func (s *Session) outboundIdentity() (protocol.Identity, error) {
	if s.identity != nil {
		return *s.identity, nil
	}
	if s.profile.Bootstrap {
		return protocol.Identity{}, &protocol.ProtocolError{
			Code:    protocol.CodeOutOfOrder,
			Message: "local edit before assign_id",
		}
	}
	return protocol.Identity{}, nil
}

func (s *Session) outboundProblem() doc.ProblemID {
	if !s.profile.RequireProblemID {
		return doc.NoProblem
	}
	return s.store.ActiveID()
}

func (s *Session) send(m *protocol.Message) error {
	if s.out == nil {
		return nil
	}
	if err := s.out.Send(m); err != nil {
		s.logger.Warn("outbound send failed",
			"action", m.Action,
			"session", s.token,
			"error", err,
		)
		return err
	}
	return nil
}

// codeSnapshot captures every document's full line array, keyed by
// problem id, for submission and late-join transfer.
func (s *Session) codeSnapshot() map[string][]string {
	code := make(map[string][]string, s.store.Len())
	s.store.Each(func(d *doc.Document) {
		code[strconv.FormatInt(int64(d.ID), 10)] = d.Buffer.Lines()
	})
	return code
}
