package text

import "fmt"

// Position is a zero-based (row, column) point in line-structured text.
// Columns count runes, not bytes.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Compare orders positions lexicographically on (row, column).
// Returns -1 if p precedes q, 0 if equal, 1 if p follows q.
func (p Position) Compare(q Position) int {
	switch {
	case p.Row < q.Row:
		return -1
	case p.Row > q.Row:
		return 1
	case p.Column < q.Column:
		return -1
	case p.Column > q.Column:
		return 1
	default:
		return 0
	}
}

// Before reports whether p strictly precedes q.
func (p Position) Before(q Position) bool {
	return p.Compare(q) < 0
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Column)
}

// Range is a half-open [Start, End) span over line-structured text.
//
// INVARIANT: Start <= End. NewRange normalizes; a Range built directly
// with Start > End is invalid and buffer operations will reorder it.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// NewRange builds a Range, swapping the endpoints if given out of order.
func NewRange(a, b Position) Range {
	if b.Before(a) {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// IsEmpty reports whether the range spans no content.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%s..%s)", r.Start, r.End)
}
