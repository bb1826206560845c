// Package file persists the ledger snapshot as a single JSON document on
// disk, the server-side analog of the browser's local storage.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"thrifty/internal/core"
	"thrifty/internal/snapshot"
)

const snapshotName = "thrifty_snapshot.json"

type Store struct {
	path string
}

// New creates a file store rooted at dir. The directory is created on the
// first save, not here, so a read-only deployment can still load.
func New(dir string) *Store {
	return &Store{path: filepath.Join(dir, snapshotName)}
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load(_ context.Context) (core.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return core.Snapshot{}, nil
		}
		return core.Snapshot{}, &snapshot.PersistenceError{Backend: "file", Op: "load", Err: err}
	}
	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return core.Snapshot{}, &snapshot.PersistenceError{
			Backend: "file", Op: "load",
			Err: fmt.Errorf("decode %s: %w", s.path, err),
		}
	}
	return snap, nil
}

func (s *Store) Save(_ context.Context, snap core.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &snapshot.PersistenceError{Backend: "file", Op: "save", Err: err}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return &snapshot.PersistenceError{Backend: "file", Op: "save", Err: err}
	}
	// Write-then-rename keeps the previous snapshot intact if we crash
	// mid-write.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &snapshot.PersistenceError{Backend: "file", Op: "save", Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return &snapshot.PersistenceError{Backend: "file", Op: "save", Err: err}
	}
	return nil
}
