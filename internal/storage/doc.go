// Package storage persists translation history.
//
// Drivers:
//   - "file": JSON Lines append log with an in-memory per-chat tail
//   - "sqlite": SQLite database (modernc.org/sqlite, no cgo)
package storage
