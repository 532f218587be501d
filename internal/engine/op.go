package engine

import (
	"fmt"

	"github.com/roach88/mirrorpad/internal/text"
)

// Kind tags the operation variant.
type Kind int

const (
	// KindInsert merges lines into a buffer at a start position.
	KindInsert Kind = iota + 1
	// KindRemove deletes a half-open range from a buffer.
	KindRemove
)

func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindRemove:
		return "remove"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Op is a tagged variant describing one remote edit. Exactly the fields of
// the tagged kind are meaningful.
type Op struct {
	Kind Kind

	// Insert fields.
	Start text.Position
	Lines []string

	// Remove field.
	Range text.Range
}

// InsertOp builds an insert operation.
func InsertOp(start text.Position, lines []string) Op {
	return Op{Kind: KindInsert, Start: start, Lines: lines}
}

// RemoveOp builds a remove operation.
func RemoveOp(r text.Range) Op {
	return Op{Kind: KindRemove, Range: r}
}
