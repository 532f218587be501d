// Package cursor tracks the last known caret position of every remote
// participant, per document, and decides which indicators are visible.
//
// A cursor indicator is visible when its document is the active one AND
// its position projects inside the current viewport. Visibility is
// recomputed on every geometry-changing trigger: buffer mutation, scroll,
// resize, font-size change, and active-document switch.
//
// Two lifetime policies are supported, chosen once at construction:
//
//   - PolicyPersistent: an indicator stays visible until a visibility
//     recomputation hides it.
//   - PolicyEphemeral: an indicator fades a fixed window after the last
//     activity. Each activity schedules a hide and increments a pending
//     count; each expiry decrements it; the indicator hides only when the
//     count reaches zero. A refreshed cursor therefore never flickers.
//
// Time is injected through the Clock interface so the fade behavior is
// deterministic under test. Clock implementations must run their callbacks
// on the goroutine that owns the Tracker; the session's loop clock
// marshals expiries through the event queue.
package cursor
