package text

import "strings"

// Buffer is a line-structured text buffer. It mirrors one document held by
// the editor widget: every document owns exactly one Buffer, whether or not
// it is currently bound to the visible surface.
//
// A Buffer always holds at least one line; the empty document is a single
// empty line. Buffer is not safe for concurrent use - all mutation is
// serialized by the session event loop.
type Buffer struct {
	lines []string
}

// NewBuffer returns an empty buffer (one empty line).
func NewBuffer() *Buffer {
	return &Buffer{lines: []string{""}}
}

// NewBufferLines returns a buffer holding the given lines.
// A nil or empty slice yields the empty document.
func NewBufferLines(lines []string) *Buffer {
	b := NewBuffer()
	b.SetLines(lines)
	return b
}

// SetLines replaces the buffer content wholesale. Used for late-join
// catch-up, where the relay delivers a document's full line array.
func (b *Buffer) SetLines(lines []string) {
	if len(lines) == 0 {
		b.lines = []string{""}
		return
	}
	b.lines = make([]string, len(lines))
	copy(b.lines, lines)
}

// Lines returns a copy of the buffer's lines.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Line returns the content of one row, or "" if row is out of bounds.
func (b *Buffer) Line(row int) string {
	if row < 0 || row >= len(b.lines) {
		return ""
	}
	return b.lines[row]
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Text returns the full buffer content with lines joined by newlines.
func (b *Buffer) Text() string {
	return strings.Join(b.lines, "\n")
}

// InsertMergedLines merges lines into the buffer at the given position and
// returns the position immediately after the inserted text.
//
// The first entry concatenates onto the content before the position, the
// last entry concatenates onto the content after it, and interior entries
// become new lines. A two-entry insert of empty strings is a bare newline:
// it splits the line and advances the line count by one. An empty slice is
// a no-op.
//
// Out-of-range positions are clamped to the nearest valid position.
func (b *Buffer) InsertMergedLines(at Position, insert []string) Position {
	pos := b.clamp(at)
	if len(insert) == 0 {
		return pos
	}

	head, tail := splitAt(b.lines[pos.Row], pos.Column)

	if len(insert) == 1 {
		b.lines[pos.Row] = head + insert[0] + tail
		return Position{Row: pos.Row, Column: pos.Column + runeLen(insert[0])}
	}

	last := len(insert) - 1
	merged := make([]string, 0, len(b.lines)+last)
	merged = append(merged, b.lines[:pos.Row]...)
	merged = append(merged, head+insert[0])
	merged = append(merged, insert[1:last]...)
	merged = append(merged, insert[last]+tail)
	merged = append(merged, b.lines[pos.Row+1:]...)
	b.lines = merged

	return Position{Row: pos.Row + last, Column: runeLen(insert[last])}
}

// Remove deletes the content within r, inclusive of start and exclusive of
// end, joining the line at r.Start with the remainder of the line at r.End.
// Returns the (clamped) start position.
func (b *Buffer) Remove(r Range) Position {
	start := b.clamp(r.Start)
	end := b.clamp(r.End)
	if end.Before(start) {
		start, end = end, start
	}
	if start == end {
		return start
	}

	head, _ := splitAt(b.lines[start.Row], start.Column)
	_, tail := splitAt(b.lines[end.Row], end.Column)

	joined := make([]string, 0, len(b.lines)-(end.Row-start.Row))
	joined = append(joined, b.lines[:start.Row]...)
	joined = append(joined, head+tail)
	joined = append(joined, b.lines[end.Row+1:]...)
	b.lines = joined

	return start
}

// End returns the position just past the last character of the buffer.
func (b *Buffer) End() Position {
	last := len(b.lines) - 1
	return Position{Row: last, Column: runeLen(b.lines[last])}
}

// RangeOf returns the range that an insert of the given lines at start
// would cover. Useful for undoing an insert with Remove.
func RangeOf(start Position, lines []string) Range {
	if len(lines) == 0 {
		return Range{Start: start, End: start}
	}
	if len(lines) == 1 {
		return Range{Start: start, End: Position{Row: start.Row, Column: start.Column + runeLen(lines[0])}}
	}
	return Range{
		Start: start,
		End:   Position{Row: start.Row + len(lines) - 1, Column: runeLen(lines[len(lines)-1])},
	}
}

// clamp snaps a position onto the buffer: the row is clamped to the last
// line and the column to the line's rune length.
func (b *Buffer) clamp(p Position) Position {
	if p.Row < 0 {
		return Position{}
	}
	if p.Row >= len(b.lines) {
		last := len(b.lines) - 1
		return Position{Row: last, Column: runeLen(b.lines[last])}
	}
	col := p.Column
	if col < 0 {
		col = 0
	}
	if n := runeLen(b.lines[p.Row]); col > n {
		col = n
	}
	return Position{Row: p.Row, Column: col}
}

// splitAt splits a line at a rune offset. The offset must already be
// clamped to [0, runeLen(line)].
func splitAt(line string, col int) (head, tail string) {
	if col <= 0 {
		return "", line
	}
	runes := []rune(line)
	if col >= len(runes) {
		return line, ""
	}
	return string(runes[:col]), string(runes[col:])
}

func runeLen(s string) int {
	return len([]rune(s))
}
