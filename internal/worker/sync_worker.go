// Package worker mirrors the local snapshot to the remote tier. It
// reacts to AMQP sync messages and also runs a periodic pass so a lost
// message only delays the mirror instead of losing it.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"thrifty/internal/amqp"
	"thrifty/internal/snapshot"
)

type SyncWorker struct {
	local  snapshot.Store
	remote snapshot.Store

	mu           sync.Mutex
	lastRevision uint64
	lastSynced   bool
}

func NewSyncWorker(local, remote snapshot.Store) *SyncWorker {
	return &SyncWorker{local: local, remote: remote}
}

// HandleSyncMessage mirrors the snapshot for one AMQP message. Messages
// older than the last mirrored revision are skipped; the state they
// describe has already been superseded.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.SnapshotSyncMessage) error {
	w.mu.Lock()
	if w.lastSynced && msg.Revision <= w.lastRevision {
		w.mu.Unlock()
		slog.DebugContext(ctx, "Skipping stale sync message",
			"revision", msg.Revision, "last", w.lastRevision)
		return nil
	}
	w.mu.Unlock()

	if err := w.mirror(ctx); err != nil {
		return err
	}

	w.mu.Lock()
	if msg.Revision > w.lastRevision {
		w.lastRevision = msg.Revision
	}
	w.lastSynced = true
	w.mu.Unlock()

	slog.InfoContext(ctx, "Snapshot mirrored to remote", "revision", msg.Revision)
	return nil
}

// StartupSyncCheck mirrors once at boot to recover from messages missed
// while the worker was down.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	if err := w.mirror(ctx); err != nil {
		return fmt.Errorf("startup sync: %w", err)
	}
	w.mu.Lock()
	w.lastSynced = true
	w.mu.Unlock()
	slog.InfoContext(ctx, "Startup sync completed")
	return nil
}

// RunPeriodic mirrors on an interval until the context ends.
func (w *SyncWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.mirror(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic sync failed", "error", err)
			}
		}
	}
}

func (w *SyncWorker) mirror(ctx context.Context) error {
	snap, err := w.local.Load(ctx)
	if err != nil {
		return fmt.Errorf("load local snapshot: %w", err)
	}
	if err := w.remote.Save(ctx, snap); err != nil {
		return fmt.Errorf("save remote snapshot: %w", err)
	}
	return nil
}
