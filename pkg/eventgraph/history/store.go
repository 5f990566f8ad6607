// Package history records finished graph runs.
package history

import (
	"errors"
)

// Store persists run records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a record. Overwrites a record with the same run ID.
	Save(rec Record) error

	// Load retrieves the record of a run.
	// Returns ErrNotFound if the run has no record.
	Load(runID string) (Record, error)

	// List returns records ordered by start time, oldest first.
	// An empty graph lists every graph. Returns an empty slice (not
	// error) when nothing matches.
	List(graph string) ([]Record, error)

	// Delete removes a record.
	// Returns nil if the record doesn't exist.
	Delete(runID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for history operations.
var (
	// ErrNotFound indicates a run has no record.
	ErrNotFound = errors.New("run record not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("history store closed")
)
