// Package history persists a record of every bot session to a local SQLite
// database so completed and failed attendances can be inspected later.
package history
