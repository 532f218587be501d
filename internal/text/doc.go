// Package text provides the line-structured primitives the sync core is
// built on: zero-based (row, column) positions, half-open ranges, and a
// line buffer that mirrors the editor widget's document model.
//
// The buffer implements the same merge-insert semantics as a multi-line
// paste: the first inserted line joins the content before the insertion
// point, the last inserted line joins the content after it, and interior
// lines become new lines. Removal is the inverse: delete [start, end) and
// join the boundary lines.
//
// Columns are rune offsets. This is a deliberate divergence from the
// UTF-16 units of browser editors; for the line content this layer
// mirrors, the two agree on everything inside the Basic Multilingual Plane.
//
// Geometry maps positions to on-screen pixel coordinates the way the
// editor widget does, so peer cursor indicators can be placed and
// visibility-filtered without a rendering environment.
package text
