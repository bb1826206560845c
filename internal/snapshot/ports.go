// Package snapshot defines the persistence contract of the ledger engine:
// loading and saving the durable state snapshot, independent of the
// backing store.
package snapshot

import (
	"context"

	"thrifty/internal/core"
)

// Store persists the full ledger snapshot. Load returns empty defaults
// when nothing has been stored yet. Save failures must leave any previous
// durable state intact where the backend allows it; the engine keeps
// operating from memory either way.
type Store interface {
	Load(ctx context.Context) (core.Snapshot, error)
	Save(ctx context.Context, snap core.Snapshot) error
}

// PersistenceError marks a failed durable write or read. It is a warning,
// not a fatal condition: in-memory state stays authoritative.
type PersistenceError struct {
	Backend string
	Op      string
	Err     error
}

func (e *PersistenceError) Error() string {
	return e.Backend + " " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
