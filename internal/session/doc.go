// Package session owns the meeting session lifecycle: the Session state, the
// timing policy, and the controller that drives join, monitor, retry, and
// shutdown.
//
// The controller is the only writer of session state. Collaborators (the
// observer, joiner, recorder, and finalizer) are consumed through small
// interfaces and return values or signals instead of mutating shared state,
// so the whole loop runs on a single logical thread without locking. Ending
// is a single idempotent path: no matter which timer, signal, or failure
// triggers shutdown, cleanup runs exactly once.
package session
