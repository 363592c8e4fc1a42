// Package capture supervises the external ffmpeg process that records meeting
// audio and, optionally, video.
//
// The process is launched in its own process group and owns its lifetime
// independently of the monitor loop; the supervisor only starts it, tracks the
// single live handle, and stops it with a graceful terminate followed by a
// forced kill. Platform support is checked up front: combinations ffmpeg
// cannot capture on the running host fail fast with ErrUnsupportedPlatform.
package capture
