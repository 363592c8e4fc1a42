// Package botrun assembles and executes one complete bot session: it parses
// the meeting link, acquires the single-instance lock, opens the browser and
// history store, wires the session controller to its collaborators, and
// records the outcome.
package botrun
