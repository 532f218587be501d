package protocol

import (
	"github.com/roach88/mirrorpad/internal/doc"
	"github.com/roach88/mirrorpad/internal/text"
)

// Profile declares which envelope fields a deployment requires. Observed
// relay revisions differ: the current one tags every message with
// user_id, token and problem_id; the earliest one has none of them and
// treats the whole session as a single document.
type Profile struct {
	Name string

	// Bootstrap is true when the relay opens the session with assign_id.
	// Without it the session runs pre-bootstrapped on one implicit
	// document.
	Bootstrap bool

	RequireUserID    bool
	RequireToken     bool
	RequireProblemID bool
}

// FullProfile matches the current multi-document relay.
var FullProfile = Profile{
	Name:             "full",
	Bootstrap:        true,
	RequireUserID:    true,
	RequireToken:     true,
	RequireProblemID: true,
}

// LegacyProfile matches the earliest single-document relay revision.
var LegacyProfile = Profile{
	Name: "legacy",
}

// Outbound message constructors. Every outbound message carries the
// session identity and, in multi-document deployments, the problem id of
// the document the local user is editing.

// NewInsert builds an outbound insert message from a local change event.
func NewInsert(id Identity, problem doc.ProblemID, start, end text.Position, lines []string) *Message {
	return envelope(ActionInsert, id, problem, &Data{Text: lines, Start: &start, End: &end})
}

// NewRemove builds an outbound remove message from a local change event.
func NewRemove(id Identity, problem doc.ProblemID, start, end text.Position) *Message {
	return envelope(ActionRemove, id, problem, &Data{Start: &start, End: &end})
}

// NewCursorMove builds an outbound cursor movement message.
func NewCursorMove(id Identity, problem doc.ProblemID, pos text.Position) *Message {
	return envelope(ActionCursorMove, id, problem, &Data{Pos: &pos})
}

// NewSubmitCode builds the end-of-game submission carrying every
// document's full line array.
func NewSubmitCode(id Identity, code map[string][]string) *Message {
	return envelope(ActionSubmitCode, id, doc.NoProblem, &Data{Code: code})
}

// NewSendRequestedCode builds the late-join catch-up reply.
func NewSendRequestedCode(id Identity, code map[string][]string) *Message {
	return envelope(ActionSendRequestedCode, id, doc.NoProblem, &Data{Code: code})
}

func envelope(action Action, id Identity, problem doc.ProblemID, data *Data) *Message {
	m := &Message{
		Action: action,
		UserID: id.UserID,
		Token:  id.Token,
		Data:   data,
	}
	if problem != doc.NoProblem {
		p := problem
		m.ProblemID = &p
	}
	return m
}
