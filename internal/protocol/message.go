package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/mirrorpad/internal/doc"
	"github.com/roach88/mirrorpad/internal/text"
)

// Action tags a wire message.
type Action string

const (
	ActionAssignID          Action = "assign_id"
	ActionInsert            Action = "insert"
	ActionRemove            Action = "remove"
	ActionCursorMove        Action = "cursorMove"
	ActionRequestCode       Action = "request_code"
	ActionSendRequestedCode Action = "send_requested_code"
	ActionGameEnd           Action = "game_end"
	ActionSubmitCode        Action = "submitCode"
	ActionChatMessage       Action = "chat_message"
	ActionVote              Action = "vote"
	ActionRole              Action = "role"
	ActionResult            Action = "result"
)

// Known reports whether the action is one of the recognized kinds.
func (a Action) Known() bool {
	switch a {
	case ActionAssignID, ActionInsert, ActionRemove, ActionCursorMove,
		ActionRequestCode, ActionSendRequestedCode, ActionGameEnd,
		ActionSubmitCode, ActionChatMessage, ActionVote, ActionRole,
		ActionResult:
		return true
	}
	return false
}

// DocumentScoped reports whether the action targets a single document.
func (a Action) DocumentScoped() bool {
	switch a {
	case ActionInsert, ActionRemove, ActionCursorMove:
		return true
	}
	return false
}

// UserID is the relay-assigned participant identifier. It is opaque to
// the core; the relay issues integers but test fixtures and future relays
// may use strings, so decoding accepts either.
type UserID string

func (u *UserID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*u = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*u = UserID(n.String())
		return nil
	}
	return fmt.Errorf("user_id must be a string or number, got %s", b)
}

// Identity is the relay-assigned session identity: every outbound message
// is tagged with it, and inbound messages carrying the same user id are
// self-echoes.
type Identity struct {
	UserID UserID `json:"user_id"`
	Token  string `json:"token"`
}

// Data is the payload of a document-scoped or code-transfer message.
type Data struct {
	// Insert payload: ordered per-line fragments. First and last entries
	// are partial lines, interior entries are full lines.
	Text []string `json:"text,omitempty"`

	Start *text.Position `json:"start,omitempty"`
	End   *text.Position `json:"end,omitempty"`

	// Cursor move payload.
	Pos *text.Position `json:"pos,omitempty"`

	// Code transfer payload: full line arrays keyed by problem id.
	Code map[string][]string `json:"code,omitempty"`
}

// Message is the wire envelope. Fields that a protocol revision omits
// stay at their zero values; Decode enforces presence per Profile.
type Message struct {
	Action    Action         `json:"action"`
	UserID    UserID         `json:"user_id,omitempty"`
	Token     string         `json:"token,omitempty"`
	ProblemID *doc.ProblemID `json:"problem_id,omitempty"`
	Data      *Data          `json:"data,omitempty"`

	// Bootstrap payload: problems as JSON-encoded strings, a quirk of the
	// relay's serialization that is preserved on the wire.
	Problems []string `json:"problems,omitempty"`

	// Raw is the undecoded frame, kept for lifecycle passthrough.
	// Never serialized.
	Raw json.RawMessage `json:"-"`
}

// Problem targets the document the message addresses, or doc.NoProblem
// when the field is absent or carries the broadcast sentinel.
func (m *Message) Problem() doc.ProblemID {
	if m.ProblemID == nil {
		return doc.NoProblem
	}
	return *m.ProblemID
}

// Problem is one enumerated problem from the bootstrap message.
type Problem struct {
	ID         doc.ProblemID `json:"id"`
	Prompt     string        `json:"prompt"`
	Difficulty int           `json:"difficulty"`
}

// ParseProblems decodes the bootstrap problem list. Each entry is itself a
// JSON document.
func ParseProblems(entries []string) ([]Problem, error) {
	out := make([]Problem, 0, len(entries))
	for i, entry := range entries {
		var p Problem
		if err := json.Unmarshal([]byte(entry), &p); err != nil {
			return nil, &ProtocolError{
				Code:    CodeMalformed,
				Action:  ActionAssignID,
				Message: fmt.Sprintf("problems[%d] is not valid JSON: %v", i, err),
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// Decode parses and validates one inbound frame against the deployment
// profile. Unknown actions decode successfully so the caller can report
// them; malformed JSON and known actions with missing required fields
// return a ProtocolError.
func Decode(raw []byte, p Profile) (*Message, error) {
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &ProtocolError{
			Code:    CodeMalformed,
			Message: fmt.Sprintf("invalid JSON frame: %v", err),
		}
	}
	m.Raw = append(json.RawMessage(nil), raw...)

	if m.Action == "" {
		return nil, &ProtocolError{
			Code:    CodeMalformed,
			Message: "missing action tag",
		}
	}
	if !m.Action.Known() {
		// Delivered as-is; the dispatcher reports UnknownAction.
		return &m, nil
	}

	if err := validate(&m, p); err != nil {
		return nil, err
	}
	return &m, nil
}

func validate(m *Message, p Profile) error {
	missing := func(field string) error {
		return &ProtocolError{
			Code:    CodeMissingField,
			Action:  m.Action,
			Message: fmt.Sprintf("%s requires %s", m.Action, field),
		}
	}

	if m.Action == ActionAssignID {
		if m.UserID == "" {
			return missing("user_id")
		}
		if p.RequireToken && m.Token == "" {
			return missing("token")
		}
		return nil
	}

	if p.RequireUserID && m.UserID == "" {
		return missing("user_id")
	}
	if m.Action.DocumentScoped() {
		if p.RequireProblemID && m.ProblemID == nil {
			return missing("problem_id")
		}
		if m.Data == nil {
			return missing("data")
		}
		switch m.Action {
		case ActionInsert:
			if m.Data.Start == nil {
				return missing("data.start")
			}
			if m.Data.Text == nil {
				return missing("data.text")
			}
		case ActionRemove:
			if m.Data.Start == nil {
				return missing("data.start")
			}
			if m.Data.End == nil {
				return missing("data.end")
			}
		case ActionCursorMove:
			if m.Data.Pos == nil {
				return missing("data.pos")
			}
		}
	}
	return nil
}

// Encode serializes an outbound message.
func Encode(m *Message) ([]byte, error) {
	return json.Marshal(m)
}
