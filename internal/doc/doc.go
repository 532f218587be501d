// Package doc owns the per-problem document state.
//
// A Store holds one Document (and its Buffer) per problem. Exactly one
// document is "active" at a time: its buffer is bound 1:1 to the single
// visible editor surface. Activation detaches the surface from the current
// buffer and reattaches it to the target - it never copies content, so the
// active document's buffer and the surface's bound buffer are always the
// same object.
//
// Operations addressed to a non-active document are applied to that
// document's own buffer immediately, which is what makes tab switching
// always show up-to-date content.
package doc
