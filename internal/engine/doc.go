// Package engine applies remote edit operations to document buffers.
//
// Apply is a pure function of (current buffer state, operation): it
// performs no network I/O and raises no transport-level errors. Operations
// are a tagged variant over the known kinds - insert and remove - decoded
// and validated at the protocol boundary before they reach this package.
//
// An unknown operation kind is surfaced as an UnknownActionError rather
// than applied or silently dropped: a silent drop would desynchronize this
// client from the rest of the participants without any signal.
//
// The engine applies operations in raw arrival order. There is no
// operational transformation and no convergence guarantee under reordered
// delivery; this layer is a best-effort mirror of the relay's broadcast
// stream.
package engine
