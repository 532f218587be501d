package cursor

import (
	"sort"
	"time"

	"github.com/roach88/mirrorpad/internal/doc"
	"github.com/roach88/mirrorpad/internal/text"
)

// Policy selects the indicator lifetime behavior. It is fixed at
// construction; mixing policies per activity is not supported.
type Policy int

const (
	// PolicyPersistent keeps an indicator visible until a visibility
	// recomputation hides it.
	PolicyPersistent Policy = iota
	// PolicyEphemeral hides an indicator a fade window after its last
	// activity.
	PolicyEphemeral
)

// DefaultFadeWindow is the ephemeral fade timeout.
const DefaultFadeWindow = time.Second

// DefaultFontSize matches the editor's initial font size in pixels.
const DefaultFontSize = 12

// Projector maps a position in the active document to screen coordinates.
// The second result is false when the position cannot currently be
// projected (no surface attached).
type Projector interface {
	Project(p text.Position) (text.Point, bool)
}

// RemoteCursor is the tracked state for one remote participant: at most
// one live cursor per user at any time. A user editing document A and then
// B overwrites the entry, never appends. Entries are never removed within
// a session; stale ones just stay invisible.
type RemoteCursor struct {
	UserID  string
	DocID   doc.ProblemID
	Pos     text.Position
	Visible bool

	// pendingHides is the ephemeral-policy reference count: incremented
	// per activity, decremented per expiry, hide only at zero.
	pendingHides int
}

// Tracker maintains all remote cursors for a session.
//
// Not safe for concurrent use: the owning event loop serializes calls,
// including fade expiries (see Clock).
type Tracker struct {
	policy    Policy
	window    time.Duration
	clock     Clock
	projector Projector

	active   doc.ProblemID
	viewport text.Viewport
	glyph    text.Glyph

	cursors map[string]*RemoteCursor
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithPolicy selects the indicator lifetime policy.
func WithPolicy(p Policy) Option {
	return func(t *Tracker) { t.policy = p }
}

// WithFadeWindow overrides the ephemeral fade timeout.
func WithFadeWindow(d time.Duration) Option {
	return func(t *Tracker) { t.window = d }
}

// WithClock injects the fade clock.
func WithClock(c Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithViewport sets the initial viewport bounds.
func WithViewport(v text.Viewport) Option {
	return func(t *Tracker) { t.viewport = v }
}

// WithFontSize sets the initial editor font size.
func WithFontSize(px int) Option {
	return func(t *Tracker) { t.glyph = text.GlyphForFontSize(px) }
}

// NewTracker creates a tracker. A nil projector treats every position as
// inside the viewport, which keeps headless sessions and tests simple.
func NewTracker(projector Projector, opts ...Option) *Tracker {
	t := &Tracker{
		policy:    PolicyPersistent,
		window:    DefaultFadeWindow,
		clock:     SystemClock{},
		projector: projector,
		active:    doc.NoProblem,
		viewport:  text.Viewport{MinX: 0, MinY: 0, MaxX: 1 << 30, MaxY: 1 << 30},
		glyph:     text.GlyphForFontSize(DefaultFontSize),
		cursors:   make(map[string]*RemoteCursor),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NoteActivity upserts the cursor for a user and recomputes its
// visibility. Under the ephemeral policy the hide is rescheduled, never
// stacked: an activity inside the fade window cancels the pending hide by
// out-counting it.
func (t *Tracker) NoteActivity(userID string, docID doc.ProblemID, pos text.Position) {
	c, ok := t.cursors[userID]
	if !ok {
		c = &RemoteCursor{UserID: userID}
		t.cursors[userID] = c
	}
	c.DocID = docID
	c.Pos = pos
	c.Visible = t.projects(c)

	if t.policy == PolicyEphemeral {
		c.pendingHides++
		t.clock.AfterFunc(t.window, func() { t.expire(userID) })
	}
}

// expire is the fade callback: decrement, hide only at zero.
func (t *Tracker) expire(userID string) {
	c, ok := t.cursors[userID]
	if !ok {
		return
	}
	c.pendingHides--
	if c.pendingHides <= 0 {
		c.pendingHides = 0
		c.Visible = false
	}
}

// RecomputeVisibility re-evaluates every cursor against new viewport
// bounds. Invoked on scroll and resize.
func (t *Tracker) RecomputeVisibility(viewport text.Viewport) {
	t.viewport = viewport
	t.recomputeAll()
}

// SetActiveDoc records a document switch and re-evaluates visibility:
// only cursors on the newly active document remain shown. Stored
// positions are untouched.
func (t *Tracker) SetActiveDoc(id doc.ProblemID) {
	t.active = id
	t.recomputeAll()
}

// SetFontSize rescales the cursor glyph and re-evaluates visibility
// (projection geometry depends on the font size).
func (t *Tracker) SetFontSize(px int) {
	t.glyph = text.GlyphForFontSize(px)
	t.recomputeAll()
}

// Glyph returns the current indicator size, shared by all tracked cursors.
func (t *Tracker) Glyph() text.Glyph {
	return t.glyph
}

// Cursor returns a snapshot of one user's cursor.
func (t *Tracker) Cursor(userID string) (RemoteCursor, bool) {
	c, ok := t.cursors[userID]
	if !ok {
		return RemoteCursor{}, false
	}
	return *c, true
}

// Count returns the number of tracked users.
func (t *Tracker) Count() int {
	return len(t.cursors)
}

// All returns a snapshot of every tracked cursor, sorted by user id.
func (t *Tracker) All() []RemoteCursor {
	out := make([]RemoteCursor, 0, len(t.cursors))
	for _, c := range t.cursors {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// Visible returns the user ids with currently visible cursors.
func (t *Tracker) Visible() []string {
	var out []string
	for id, c := range t.cursors {
		if c.Visible {
			out = append(out, id)
		}
	}
	return out
}

func (t *Tracker) recomputeAll() {
	for _, c := range t.cursors {
		if t.policy == PolicyEphemeral && c.pendingHides == 0 {
			// Already faded out; geometry changes do not resurrect it.
			c.Visible = false
			continue
		}
		c.Visible = t.projects(c)
	}
}

// projects reports whether the cursor belongs to the active document and
// lands inside the viewport.
func (t *Tracker) projects(c *RemoteCursor) bool {
	if c.DocID != t.active {
		return false
	}
	if t.projector == nil {
		return true
	}
	pt, ok := t.projector.Project(c.Pos)
	if !ok {
		return false
	}
	return t.viewport.Contains(pt)
}
