package engine

import (
	"github.com/roach88/mirrorpad/internal/doc"
	"github.com/roach88/mirrorpad/internal/text"
)

// Apply mutates the target document's buffer with op and returns the
// affected position: for an insert, the position immediately after the
// inserted text (where the acting user's cursor indicator belongs); for a
// remove, the start of the removed range.
//
// The target may be any registered document, active or not.
func Apply(target *doc.Document, op Op) (text.Position, error) {
	switch op.Kind {
	case KindInsert:
		return target.Buffer.InsertMergedLines(op.Start, op.Lines), nil
	case KindRemove:
		return target.Buffer.Remove(op.Range), nil
	default:
		return text.Position{}, &UnknownActionError{Action: op.Kind.String()}
	}
}
