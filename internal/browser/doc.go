// Package browser defines the browser-driving contract the session controller
// consumes, plus a W3C WebDriver wire-protocol client that satisfies it.
//
// Every lookup takes a bounded wait: a condition that does not appear within
// its window reports ErrNotFound, which callers treat as a negative
// observation rather than a failure. A destroyed driving session surfaces as
// ErrSessionLost and is the only fatal condition this package reports.
package browser
