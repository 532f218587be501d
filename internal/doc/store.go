package doc

import (
	"github.com/roach88/mirrorpad/internal/text"
)

// ProblemID identifies one problem/document. The relay assigns these.
type ProblemID int64

// NoProblem is the sentinel for messages with no single-document target.
const NoProblem ProblemID = -1

// Document is one editable text buffer plus the problem metadata it was
// created from. Documents are created once at session bootstrap and never
// destroyed during a session.
type Document struct {
	ID         ProblemID
	Prompt     string
	Difficulty int
	Buffer     *text.Buffer
}

// Surface is the single visible editor surface. The store rebinds it on
// activation; implementations backed by a real widget swap the displayed
// buffer, headless clients use NopSurface.
type Surface interface {
	// Bind attaches the surface to a buffer, replacing any previous
	// binding. The surface must render and mutate exactly this object.
	Bind(*text.Buffer)
}

// NopSurface is a Surface for headless sessions and tests.
type NopSurface struct{}

func (NopSurface) Bind(*text.Buffer) {}

// Store owns all Documents for a session and tracks which one is active.
//
// Store is not safe for concurrent use; the session event loop serializes
// all access, which makes activation atomic relative to message handling.
type Store struct {
	docs    map[ProblemID]*Document
	order   []ProblemID
	active  ProblemID
	surface Surface
}

// NewStore creates an empty store bound to the given surface.
// A nil surface is treated as NopSurface.
func NewStore(surface Surface) *Store {
	if surface == nil {
		surface = NopSurface{}
	}
	return &Store{
		docs:    make(map[ProblemID]*Document),
		active:  NoProblem,
		surface: surface,
	}
}

// Create registers a new document with an empty buffer.
// Returns a DuplicateIDError if the id is already present.
func (s *Store) Create(id ProblemID, prompt string, difficulty int) (*Document, error) {
	if _, ok := s.docs[id]; ok {
		return nil, &DuplicateIDError{ID: id}
	}
	d := &Document{
		ID:         id,
		Prompt:     prompt,
		Difficulty: difficulty,
		Buffer:     text.NewBuffer(),
	}
	s.docs[id] = d
	s.order = append(s.order, id)
	return d, nil
}

// Get resolves a document regardless of activity state.
// Returns an UnknownIDError if the id was never registered.
func (s *Store) Get(id ProblemID) (*Document, error) {
	d, ok := s.docs[id]
	if !ok {
		return nil, &UnknownIDError{ID: id}
	}
	return d, nil
}

// Activate rebinds the editor surface to the target document's buffer.
// The previously active buffer keeps its content; nothing is copied.
// Returns an UnknownIDError if the id was never registered.
func (s *Store) Activate(id ProblemID) error {
	d, ok := s.docs[id]
	if !ok {
		return &UnknownIDError{ID: id}
	}
	s.active = id
	s.surface.Bind(d.Buffer)
	return nil
}

// ActiveID returns the id of the active document, or NoProblem before the
// first activation.
func (s *Store) ActiveID() ProblemID {
	return s.active
}

// Active returns the active document, or nil before the first activation.
func (s *Store) Active() *Document {
	if s.active == NoProblem {
		return nil
	}
	return s.docs[s.active]
}

// Len returns the number of registered documents.
func (s *Store) Len() int {
	return len(s.docs)
}

// Each visits every document in creation order.
func (s *Store) Each(fn func(*Document)) {
	for _, id := range s.order {
		fn(s.docs[id])
	}
}
