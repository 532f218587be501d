package session

import (
	"strconv"

	"github.com/roach88/mirrorpad/internal/doc"
	"github.com/roach88/mirrorpad/internal/engine"
	"github.com/roach88/mirrorpad/internal/protocol"
	"github.com/roach88/mirrorpad/internal/text"
)

func defaultHandlers() map[protocol.Action]handler {
	return map[protocol.Action]handler{
		protocol.ActionAssignID:          (*Session).handleAssignID,
		protocol.ActionInsert:            (*Session).handleInsert,
		protocol.ActionRemove:            (*Session).handleRemove,
		protocol.ActionCursorMove:        (*Session).handleCursorMove,
		protocol.ActionRequestCode:       (*Session).handleRequestCode,
		protocol.ActionSendRequestedCode: (*Session).handleSendRequestedCode,
		protocol.ActionGameEnd:           (*Session).handleGameEnd,
		protocol.ActionSubmitCode:        (*Session).handleLifecycle,
		protocol.ActionChatMessage:       (*Session).handleLifecycle,
		protocol.ActionVote:              (*Session).handleLifecycle,
		protocol.ActionRole:              (*Session).handleLifecycle,
		protocol.ActionResult:            (*Session).handleLifecycle,
	}
}

// handleAssignID bootstraps the session: adopt the assigned identity,
// create one document per enumerated problem, activate the first. Runs
// exactly once; a relay that bootstraps twice is broken beyond recovery.
func (s *Session) handleAssignID(m *protocol.Message) error {
	if s.identity != nil {
		return &protocol.ProtocolError{
			Code:    protocol.CodeDuplicateBootstrap,
			Action:  m.Action,
			Message: "assign_id received twice",
			Fatal:   true,
		}
	}

	problems, err := protocol.ParseProblems(m.Problems)
	if err != nil {
		return fatal(err)
	}
	for _, p := range problems {
		if _, err := s.store.Create(p.ID, p.Prompt, p.Difficulty); err != nil {
			return fatal(err)
		}
	}
	if len(problems) > 0 {
		if err := s.ActivateDocument(problems[0].ID); err != nil {
			return fatal(err)
		}
	}

	s.identity = &protocol.Identity{UserID: m.UserID, Token: m.Token}
	s.logger.Info("session bootstrapped",
		"user_id", m.UserID,
		"documents", len(problems),
		"session", s.token,
	)
	return nil
}

// fatal promotes a bootstrap-time protocol error: a half-built document
// set cannot mirror the game, so the session must not continue.
func fatal(err error) error {
	if pe, ok := err.(*protocol.ProtocolError); ok {
		pe.Fatal = true
		return pe
	}
	return err
}

func (s *Session) handleInsert(m *protocol.Message) error {
	target, err := s.resolveTarget(m)
	if err != nil {
		return err
	}
	pos, err := engine.Apply(target, engine.InsertOp(*m.Data.Start, m.Data.Text))
	if err != nil {
		return err
	}
	s.tracker.NoteActivity(string(m.UserID), target.ID, pos)
	return nil
}

func (s *Session) handleRemove(m *protocol.Message) error {
	target, err := s.resolveTarget(m)
	if err != nil {
		return err
	}
	r := text.NewRange(*m.Data.Start, *m.Data.End)
	pos, err := engine.Apply(target, engine.RemoveOp(r))
	if err != nil {
		return err
	}
	s.tracker.NoteActivity(string(m.UserID), target.ID, pos)
	return nil
}

func (s *Session) handleCursorMove(m *protocol.Message) error {
	target, err := s.resolveTarget(m)
	if err != nil {
		return err
	}
	s.tracker.NoteActivity(string(m.UserID), target.ID, *m.Data.Pos)
	return nil
}

// resolveTarget maps a document-scoped message to its document. Messages
// without a problem id (or carrying the broadcast sentinel) address the
// active document, matching how the earliest relay revision behaves.
func (s *Session) resolveTarget(m *protocol.Message) (*doc.Document, error) {
	if s.profile.Bootstrap && s.identity == nil {
		return nil, &protocol.ProtocolError{
			Code:    protocol.CodeOutOfOrder,
			Action:  m.Action,
			Message: string(m.Action) + " before assign_id",
		}
	}
	id := m.Problem()
	if id == doc.NoProblem {
		id = s.store.ActiveID()
	}
	return s.store.Get(id)
}

// handleRequestCode answers a late joiner's catch-up request with every
// document's current content. The relay broadcasts the request, so any
// established peer may answer; replying unconditionally is harmless
// because the payload is a full-state snapshot, not a delta.
func (s *Session) handleRequestCode(m *protocol.Message) error {
	id, err := s.outboundIdentity()
	if err != nil {
		return err
	}
	return s.send(protocol.NewSendRequestedCode(id, s.codeSnapshot()))
}

// handleSendRequestedCode loads a catch-up snapshot into the local
// documents. Entries for unknown problem ids are reported individually;
// the rest of the snapshot still loads.
func (s *Session) handleSendRequestedCode(m *protocol.Message) error {
	if m.Data == nil || m.Data.Code == nil {
		return &protocol.ProtocolError{
			Code:    protocol.CodeMissingField,
			Action:  m.Action,
			Message: "send_requested_code requires data.code",
		}
	}
	for key, lines := range m.Data.Code {
		n, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			s.diags.Report(Diagnostic{
				Code:    string(protocol.CodeMalformed),
				Action:  m.Action,
				UserID:  m.UserID,
				Message: "code key is not a problem id: " + key,
			})
			continue
		}
		d, err := s.store.Get(doc.ProblemID(n))
		if err != nil {
			s.diags.Report(diagnose(err, m))
			continue
		}
		d.Buffer.SetLines(lines)
	}
	return nil
}

// handleGameEnd submits every document's final content and archives the
// game locally. The submission goes out even when archiving fails; losing
// a local record must not lose the game result.
func (s *Session) handleGameEnd(m *protocol.Message) error {
	id, err := s.outboundIdentity()
	if err != nil {
		return err
	}
	if err := s.send(protocol.NewSubmitCode(id, s.codeSnapshot())); err != nil {
		return err
	}

	if s.archiver != nil {
		var solutions []Solution
		s.store.Each(func(d *doc.Document) {
			solutions = append(solutions, Solution{
				ProblemID:  d.ID,
				Prompt:     d.Prompt,
				Difficulty: d.Difficulty,
				Lines:      d.Buffer.Lines(),
			})
		})
		if err := s.archiver.SaveGame(s.token, solutions); err != nil {
			s.logger.Warn("game archive failed", "session", s.token, "error", err)
		}
	}
	return nil
}

// handleLifecycle forwards recognized game-lifecycle messages (chat,
// votes, roles, results, peers' submissions) to the embedding
// application. The core validates the envelope but never interprets them.
func (s *Session) handleLifecycle(m *protocol.Message) error {
	if s.lifecycle != nil {
		s.lifecycle(m)
	}
	return nil
}
