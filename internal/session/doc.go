// Package session wires the sync core together: it owns the relay-assigned
// identity, the document store, and the peer cursor tracker, and routes
// every inbound frame through an explicit dispatch table keyed by action
// tag.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// All work - inbound message handling, local edit emission, visibility
// recomputation, fade-timer expiries - executes serially on the Run loop
// goroutine. Transport readers and timers enqueue; nothing mutates state
// from outside the loop. This makes document activation a single atomic
// step relative to message handling, with no locks anywhere in the core.
//
// Message Processing Flow:
//  1. Transport delivers a raw frame via HandleFrame (thread-safe enqueue)
//  2. Run dequeues and calls Dispatch
//  3. Dispatch decodes/validates per the deployment profile, suppresses
//     self-echoes, and routes through the handler table
//  4. Document-scoped handlers resolve the target document (active or
//     not), apply the operation, and update the cursor tracker with the
//     affected position
//
// ERROR HANDLING: Errors local to one message (unknown action, unknown
// document id, missing fields) are reported to the diagnostics sink and
// that single message is dropped; the session stays consistent and keeps
// processing. A protocol violation on the bootstrap handshake is fatal -
// no document state exists yet, so the only recovery is reconnecting.
// Nothing is retried: a dropped message means best-effort mirroring, by
// the documented contract of this layer.
package session
