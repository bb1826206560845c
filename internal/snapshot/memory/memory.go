// Package memory is the in-process snapshot store: the default backend
// and the one tests compose against.
package memory

import (
	"context"
	"sync"

	"thrifty/internal/core"
)

type Store struct {
	mu   sync.Mutex
	snap core.Snapshot
}

func New() *Store {
	return &Store{}
}

// Seed pre-populates the store, for tests and demos.
func Seed(snap core.Snapshot) *Store {
	return &Store{snap: snap.Clone()}
}

func (s *Store) Load(_ context.Context) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone(), nil
}

func (s *Store) Save(_ context.Context, snap core.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap.Clone()
	return nil
}
