// Package backend assembles the persistence tiers from configuration:
// a mandatory local store, an optional S3 remote and an optional AMQP
// publisher for worker-mode sync.
package backend

import (
	"context"

	"thrifty/internal/auth"
	"thrifty/internal/services"
	"thrifty/internal/snapshot"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result is the assembled persistence stack. Store is what the ledger
// opens: the local tier alone, or the tiered remote+local combination in
// direct sync mode. Publisher is non-nil only in worker sync mode.
type Result struct {
	Store     snapshot.Store
	Local     snapshot.Store
	Remote    snapshot.Store
	Users     auth.UserStore
	Publisher services.SyncPublisher
	Cleanup   CleanupFunc
}

// Factory creates the persistence stack from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// LocalType selects the local tier.
type LocalType string

const (
	MemoryBackend LocalType = "memory"
	FileBackend   LocalType = "file"
	SQLiteBackend LocalType = "sqlite"
)

func (t LocalType) String() string {
	return string(t)
}

func (t LocalType) IsValid() bool {
	switch t {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
