package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mirrorpad/internal/cursor"
	"github.com/roach88/mirrorpad/internal/doc"
	"github.com/roach88/mirrorpad/internal/protocol"
	"github.com/roach88/mirrorpad/internal/testutil"
	"github.com/roach88/mirrorpad/internal/text"
)

// captureSender records outbound messages for assertions.
type captureSender struct {
	sent []*protocol.Message
}

func (c *captureSender) Send(m *protocol.Message) error {
	c.sent = append(c.sent, m)
	return nil
}

// captureArchiver records SaveGame calls.
type captureArchiver struct {
	token     string
	solutions []Solution
	calls     int
}

func (c *captureArchiver) SaveGame(token string, solutions []Solution) error {
	c.token = token
	c.solutions = solutions
	c.calls++
	return nil
}

type fixture struct {
	session *Session
	out     *captureSender
	diags   *RecordingSink
	clock   *testutil.FakeClock
}

func newFixture(t *testing.T, profile protocol.Profile, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		out:   &captureSender{},
		diags: &RecordingSink{},
		clock: testutil.NewFakeClock(),
	}
	base := []Option{
		WithDiagnostics(f.diags),
		WithClock(f.clock),
		WithTokens(NewFixedGenerator("session-0001")),
	}
	f.session = New(profile, f.out, append(base, opts...)...)
	return f
}

const bootstrapFrame = `{
	"action": "assign_id",
	"user_id": "u1",
	"token": "game-token",
	"problems": [
		"{\"id\":1,\"prompt\":\"Two Sum\",\"difficulty\":1}",
		"{\"id\":2,\"prompt\":\"Reverse List\",\"difficulty\":2}"
	]
}`

func (f *fixture) bootstrap(t *testing.T) {
	t.Helper()
	f.session.Dispatch([]byte(bootstrapFrame))
	require.Empty(t, f.diags.All())
	require.False(t, f.session.Terminated())
}

func TestBootstrapCreatesDocuments(t *testing.T) {
	f := newFixture(t, protocol.FullProfile)
	f.bootstrap(t)

	st := f.session.Store()
	assert.Equal(t, 2, st.Len())
	assert.Equal(t, doc.ProblemID(1), st.ActiveID())

	d1, err := st.Get(1)
	require.NoError(t, err)
	d2, err := st.Get(2)
	require.NoError(t, err)
	assert.Equal(t, []string{""}, d1.Buffer.Lines())
	assert.Equal(t, []string{""}, d2.Buffer.Lines())
	assert.NotSame(t, d1.Buffer, d2.Buffer)

	id, ok := f.session.Identity()
	require.True(t, ok)
	assert.Equal(t, protocol.UserID("u1"), id.UserID)
	assert.Equal(t, "game-token", id.Token)
}

func TestSecondBootstrapIsFatal(t *testing.T) {
	f := newFixture(t, protocol.FullProfile)
	f.bootstrap(t)

	f.session.Dispatch([]byte(bootstrapFrame))

	diags := f.diags.All()
	require.Len(t, diags, 1)
	assert.Equal(t, "DUPLICATE_BOOTSTRAP", diags[0].Code)
	assert.True(t, diags[0].Fatal)
	assert.True(t, f.session.Terminated())

	// A terminated session ignores further frames.
	f.session.Dispatch([]byte(`{"action":"insert","user_id":"u2","problem_id":1,"data":{"start":{"row":0,"column":0},"text":["x"]}}`))
	d, _ := f.session.Store().Get(1)
	assert.Equal(t, []string{""}, d.Buffer.Lines())
}

func TestRemoteInsertAppliesAndTracksCursor(t *testing.T) {
	f := newFixture(t, protocol.FullProfile)
	f.bootstrap(t)

	f.session.Dispatch([]byte(`{"action":"insert","user_id":"u2","problem_id":1,"data":{"start":{"row":0,"column":0},"text":["hello"]}}`))

	d, _ := f.session.Store().Get(1)
	assert.Equal(t, []string{"hello"}, d.Buffer.Lines())

	c, ok := f.session.Tracker().Cursor("u2")
	require.True(t, ok)
	assert.Equal(t, text.Position{Row: 0, Column: 5}, c.Pos)
	assert.Equal(t, doc.ProblemID(1), c.DocID)
	assert.True(t, c.Visible)
}

func TestRemoteRemoveAppliesAndTracksCursor(t *testing.T) {
	f := newFixture(t, protocol.FullProfile)
	f.bootstrap(t)

	f.session.Dispatch([]byte(`{"action":"insert","user_id":"u2","problem_id":1,"data":{"start":{"row":0,"column":0},"text":["abcdef"]}}`))
	f.session.Dispatch([]byte(`{"action":"remove","user_id":"u2","problem_id":1,"data":{"start":{"row":0,"column":2},"end":{"row":0,"column":4}}}`))

	d, _ := f.session.Store().Get(1)
	assert.Equal(t, []string{"abef"}, d.Buffer.Lines())

	c, _ := f.session.Tracker().Cursor("u2")
	assert.Equal(t, text.Position{Row: 0, Column: 2}, c.Pos)
}

func TestCrossDocumentEditIsIsolated(t *testing.T) {
	surface := &recordingSurface{}
	f := newFixture(t, protocol.FullProfile, WithSurface(surface))
	f.bootstrap(t)

	// Active document is 1; the edit targets 2.
	f.session.Dispatch([]byte(`{"action":"insert","user_id":"u2","problem_id":2,"data":{"start":{"row":0,"column":0},"text":["x"]}}`))

	d1, _ := f.session.Store().Get(1)
	d2, _ := f.session.Store().Get(2)
	assert.Equal(t, []string{""}, d1.Buffer.Lines())
	assert.Equal(t, []string{"x"}, d2.Buffer.Lines())

	// The surface is still bound to document 1's untouched buffer.
	require.NotNil(t, surface.bound)
	assert.Same(t, d1.Buffer, surface.bound)
	assert.Equal(t, []string{""}, surface.bound.Lines())

	// The off-screen cursor is tracked but not visible.
	c, ok := f.session.Tracker().Cursor("u2")
	require.True(t, ok)
	assert.False(t, c.Visible)
}

// recordingSurface remembers the last bound buffer.
type recordingSurface struct {
	bound *text.Buffer
}

func (r *recordingSurface) Bind(b *text.Buffer) { r.bound = b }

func TestSelfEchoIsSuppressed(t *testing.T) {
	f := newFixture(t, protocol.FullProfile)
	f.bootstrap(t)

	frames := []string{
		`{"action":"insert","user_id":"u1","problem_id":1,"data":{"start":{"row":0,"column":0},"text":["echo"]}}`,
		`{"action":"remove","user_id":"u1","problem_id":1,"data":{"start":{"row":0,"column":0},"end":{"row":0,"column":1}}}`,
		`{"action":"cursorMove","user_id":"u1","problem_id":1,"data":{"pos":{"row":3,"column":3}}}`,
		`{"action":"request_code","user_id":"u1"}`,
	}
	for _, frame := range frames {
		f.session.Dispatch([]byte(frame))
	}

	d, _ := f.session.Store().Get(1)
	assert.Equal(t, []string{""}, d.Buffer.Lines())
	assert.Equal(t, 0, f.session.Tracker().Count())
	assert.Empty(t, f.out.sent)
	assert.Empty(t, f.diags.All())
}

func TestInsertBeforeBootstrapIsReported(t *testing.T) {
	f := newFixture(t, protocol.FullProfile)

	f.session.Dispatch([]byte(`{"action":"insert","user_id":"u2","problem_id":1,"data":{"start":{"row":0,"column":0},"text":["x"]}}`))

	diags := f.diags.All()
	require.Len(t, diags, 1)
	assert.Equal(t, "OUT_OF_ORDER", diags[0].Code)
	assert.False(t, diags[0].Fatal)
	assert.False(t, f.session.Terminated())
}

func TestUnknownActionIsReportedAndSkipped(t *testing.T) {
	f := newFixture(t, protocol.FullProfile)
	f.bootstrap(t)

	f.session.Dispatch([]byte(`{"action":"sparkle","user_id":"u2"}`))

	diags := f.diags.All()
	require.Len(t, diags, 1)
	assert.Equal(t, "UNKNOWN_ACTION", diags[0].Code)
	assert.Equal(t, protocol.Action("sparkle"), diags[0].Action)
	assert.False(t, f.session.Terminated())

	// Processing continues normally afterwards.
	f.session.Dispatch([]byte(`{"action":"insert","user_id":"u2","problem_id":1,"data":{"start":{"row":0,"column":0},"text":["ok"]}}`))
	d, _ := f.session.Store().Get(1)
	assert.Equal(t, []string{"ok"}, d.Buffer.Lines())
}

func TestMalformedFrameIsReported(t *testing.T) {
	f := newFixture(t, protocol.FullProfile)
	f.bootstrap(t)

	f.session.Dispatch([]byte(`{not json`))

	diags := f.diags.All()
	require.Len(t, diags, 1)
	assert.Equal(t, "MALFORMED_MESSAGE", diags[0].Code)
	assert.False(t, f.session.Terminated())
}

func TestLocalEditsEmitWithoutApplying(t *testing.T) {
	f := newFixture(t, protocol.FullProfile)
	f.bootstrap(t)

	require.NoError(t, f.session.LocalInsert(
		text.Position{Row: 0, Column: 0},
		text.Position{Row: 0, Column: 2},
		[]string{"hi"},
	))
	require.NoError(t, f.session.LocalRemove(
		text.Position{Row: 0, Column: 0},
		text.Position{Row: 0, Column: 1},
	))
	require.NoError(t, f.session.LocalCursorMove(text.Position{Row: 1, Column: 4}))

	require.Len(t, f.out.sent, 3)
	for _, m := range f.out.sent {
		assert.Equal(t, protocol.UserID("u1"), m.UserID)
		assert.Equal(t, "game-token", m.Token)
		require.NotNil(t, m.ProblemID)
		assert.Equal(t, doc.ProblemID(1), *m.ProblemID)
	}
	assert.Equal(t, protocol.ActionInsert, f.out.sent[0].Action)
	assert.Equal(t, []string{"hi"}, f.out.sent[0].Data.Text)
	assert.Equal(t, protocol.ActionRemove, f.out.sent[1].Action)
	assert.Equal(t, protocol.ActionCursorMove, f.out.sent[2].Action)
	assert.Equal(t, text.Position{Row: 1, Column: 4}, *f.out.sent[2].Data.Pos)

	// The widget owns the local buffer mutation; the session applies
	// nothing itself.
	d, _ := f.session.Store().Get(1)
	assert.Equal(t, []string{""}, d.Buffer.Lines())
}

func TestLocalEditBeforeBootstrapFails(t *testing.T) {
	f := newFixture(t, protocol.FullProfile)

	err := f.session.LocalInsert(text.Position{}, text.Position{Row: 0, Column: 1}, []string{"x"})
	require.Error(t, err)
	assert.True(t, protocol.IsProtocolError(err))
	assert.Empty(t, f.out.sent)
}

func TestRequestCodeGetsSnapshotReply(t *testing.T) {
	f := newFixture(t, protocol.FullProfile)
	f.bootstrap(t)

	f.session.Dispatch([]byte(`{"action":"insert","user_id":"u2","problem_id":1,"data":{"start":{"row":0,"column":0},"text":["line one","line two"]}}`))
	f.session.Dispatch([]byte(`{"action":"request_code","user_id":"u3"}`))

	require.Len(t, f.out.sent, 1)
	reply := f.out.sent[0]
	assert.Equal(t, protocol.ActionSendRequestedCode, reply.Action)
	assert.Equal(t, protocol.UserID("u1"), reply.UserID)
	require.NotNil(t, reply.Data)
	assert.Equal(t, map[string][]string{
		"1": {"line one", "line two"},
		"2": {""},
	}, reply.Data.Code)
}

func TestSendRequestedCodeLoadsBuffers(t *testing.T) {
	f := newFixture(t, protocol.FullProfile)
	f.bootstrap(t)

	f.session.Dispatch([]byte(`{"action":"send_requested_code","user_id":"u2","data":{"code":{"1":["alpha","beta"],"2":["gamma"],"9":["orphan"]}}}`))

	d1, _ := f.session.Store().Get(1)
	d2, _ := f.session.Store().Get(2)
	assert.Equal(t, []string{"alpha", "beta"}, d1.Buffer.Lines())
	assert.Equal(t, []string{"gamma"}, d2.Buffer.Lines())

	// The entry for the unregistered id is reported, not fatal.
	diags := f.diags.All()
	require.Len(t, diags, 1)
	assert.Equal(t, "UNKNOWN_ID", diags[0].Code)
	assert.False(t, f.session.Terminated())
}

func TestGameEndSubmitsAndArchives(t *testing.T) {
	arch := &captureArchiver{}
	f := newFixture(t, protocol.FullProfile, WithArchiver(arch))
	f.bootstrap(t)

	f.session.Dispatch([]byte(`{"action":"insert","user_id":"u2","problem_id":2,"data":{"start":{"row":0,"column":0},"text":["solution"]}}`))
	f.session.Dispatch([]byte(`{"action":"game_end","user_id":"server"}`))

	require.Len(t, f.out.sent, 1)
	submit := f.out.sent[0]
	assert.Equal(t, protocol.ActionSubmitCode, submit.Action)
	assert.Equal(t, map[string][]string{
		"1": {""},
		"2": {"solution"},
	}, submit.Data.Code)

	require.Equal(t, 1, arch.calls)
	assert.Equal(t, "session-0001", arch.token)
	require.Len(t, arch.solutions, 2)
	assert.Equal(t, doc.ProblemID(1), arch.solutions[0].ProblemID)
	assert.Equal(t, "Two Sum", arch.solutions[0].Prompt)
	assert.Equal(t, []string{"solution"}, arch.solutions[1].Lines)
}

func TestLifecycleMessagesPassThrough(t *testing.T) {
	var seen []protocol.Action
	f := newFixture(t, protocol.FullProfile, WithLifecycle(func(m *protocol.Message) {
		seen = append(seen, m.Action)
	}))
	f.bootstrap(t)

	f.session.Dispatch([]byte(`{"action":"chat_message","user_id":"u2"}`))
	f.session.Dispatch([]byte(`{"action":"vote","user_id":"u2"}`))
	f.session.Dispatch([]byte(`{"action":"role","user_id":"u2"}`))
	f.session.Dispatch([]byte(`{"action":"result","user_id":"u2"}`))
	f.session.Dispatch([]byte(`{"action":"submitCode","user_id":"u2"}`))

	assert.Equal(t, []protocol.Action{
		protocol.ActionChatMessage,
		protocol.ActionVote,
		protocol.ActionRole,
		protocol.ActionResult,
		protocol.ActionSubmitCode,
	}, seen)
	assert.Empty(t, f.diags.All())
}

func TestActivateDocumentRebindsAndRecomputes(t *testing.T) {
	surface := &recordingSurface{}
	f := newFixture(t, protocol.FullProfile, WithSurface(surface))
	f.bootstrap(t)

	f.session.Dispatch([]byte(`{"action":"cursorMove","user_id":"u2","problem_id":2,"data":{"pos":{"row":1,"column":1}}}`))
	c, _ := f.session.Tracker().Cursor("u2")
	assert.False(t, c.Visible)

	require.NoError(t, f.session.ActivateDocument(2))

	d2, _ := f.session.Store().Get(2)
	assert.Same(t, d2.Buffer, surface.bound)
	c, _ = f.session.Tracker().Cursor("u2")
	assert.True(t, c.Visible)
	assert.Equal(t, text.Position{Row: 1, Column: 1}, c.Pos)
}

func TestLegacyProfileRunsPreBootstrapped(t *testing.T) {
	f := newFixture(t, protocol.LegacyProfile)

	// No assign_id, no user_id, no problem_id: the earliest relay revision.
	f.session.Dispatch([]byte(`{"action":"insert","data":{"start":{"row":0,"column":0},"text":["legacy"]}}`))

	d, err := f.session.Store().Get(LegacyProblemID)
	require.NoError(t, err)
	assert.Equal(t, []string{"legacy"}, d.Buffer.Lines())
	assert.Empty(t, f.diags.All())

	// Outbound frames omit identity and problem id entirely.
	require.NoError(t, f.session.LocalCursorMove(text.Position{Row: 0, Column: 6}))
	require.Len(t, f.out.sent, 1)
	assert.Equal(t, protocol.UserID(""), f.out.sent[0].UserID)
	assert.Nil(t, f.out.sent[0].ProblemID)
}

func TestEphemeralCursorFadesThroughSession(t *testing.T) {
	f := newFixture(t, protocol.FullProfile,
		WithCursorPolicy(cursor.PolicyEphemeral),
		WithFadeWindow(time.Second),
	)
	f.bootstrap(t)

	f.session.Dispatch([]byte(`{"action":"cursorMove","user_id":"u2","problem_id":1,"data":{"pos":{"row":0,"column":0}}}`))
	c, _ := f.session.Tracker().Cursor("u2")
	require.True(t, c.Visible)

	f.clock.Advance(time.Second)
	c, _ = f.session.Tracker().Cursor("u2")
	assert.False(t, c.Visible)
}
