package text

import "golang.org/x/text/width"

// Point is an on-screen pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Glyph is the rendered size of a peer cursor indicator. It is purely
// presentational and deterministic from the font size alone:
// height is the line height (fontSize * 7/6) and width grows by one pixel
// per 25px of font size.
type Glyph struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GlyphForFontSize derives the cursor glyph size from the editor font size
// in pixels.
func GlyphForFontSize(px int) Glyph {
	return Glyph{
		Width:  1 + px/25,
		Height: px * 7 / 6,
	}
}

// Geometry projects buffer positions to screen coordinates the way the
// editor widget lays text out: a fixed-width grid offset by the gutter and
// the scroll position.
type Geometry struct {
	FontSize    int // px
	CharWidth   int // px per display cell
	GutterWidth int // px
	OriginX     int // top-left of the text area on screen
	OriginY     int
	ScrollLeft  int // px scrolled, not columns
	ScrollTop   int
}

// LineHeight returns the pixel height of one text row.
func (g Geometry) LineHeight() int {
	return g.FontSize * 7 / 6
}

// Project maps a position within the given line to screen coordinates.
// The column is measured in display cells so wide runes offset the
// projection by two cells.
func (g Geometry) Project(line string, p Position) Point {
	runes := []rune(line)
	col := p.Column
	if col > len(runes) {
		col = len(runes)
	}
	if col < 0 {
		col = 0
	}
	cells := DisplayCells(string(runes[:col]))
	return Point{
		X: g.OriginX + g.GutterWidth - g.ScrollLeft + cells*g.CharWidth,
		Y: g.OriginY - g.ScrollTop + p.Row*g.LineHeight(),
	}
}

// DisplayCells returns the number of terminal-style display cells the
// string occupies: East Asian wide and fullwidth runes count as two.
func DisplayCells(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// Viewport is the visible pixel region of the editor surface.
type Viewport struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// Contains reports whether the point lies within the viewport.
func (v Viewport) Contains(pt Point) bool {
	return pt.X >= v.MinX && pt.X <= v.MaxX && pt.Y >= v.MinY && pt.Y <= v.MaxY
}
