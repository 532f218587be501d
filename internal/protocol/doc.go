// Package protocol defines the JSON wire messages exchanged with the
// relay and validates them at the boundary.
//
// The relay is an opaque broadcaster: it assigns identities on connect
// (assign_id), echoes every client message to all participants including
// the sender, and arbitrates the game lifecycle. Steady-state messages
// share one envelope - action, user_id, token, problem_id, data - but the
// observed protocol revisions disagree on which fields exist: the earliest
// deployment has no identities and no problem ids at all. A Profile
// declares which fields a deployment requires, and Decode rejects messages
// that do not match a known shape instead of reaching for fields that may
// be absent.
//
// Everything decoded here is a tagged variant over the known action kinds;
// unknown actions still decode (carrying only their tag) so the dispatcher
// can report them as diagnostics rather than dropping them silently.
package protocol
