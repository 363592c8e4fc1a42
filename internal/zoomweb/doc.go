// Package zoomweb drives the Zoom web client through a browser session. It
// owns the join choreography, the per-tick page observation that feeds the
// session controller, and the localStorage reads that recover the transcript
// payloads collected by the injected extension.
package zoomweb
