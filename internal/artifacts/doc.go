// Package artifacts finalizes session outputs: the transcript JSON document,
// the combined tar archive, and uploads to presigned destinations.
//
// Finalization is best-effort by design. Missing or malformed client-side
// payloads degrade to null fields, archive packaging skips inputs that never
// materialized, and a failed upload is logged without aborting the remaining
// ones. Nothing in this package may prevent session shutdown from completing.
package artifacts
