package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thrifty/internal/amqp"
	"thrifty/internal/core"
	"thrifty/internal/snapshot/memory"
)

type failingRemote struct{}

func (failingRemote) Load(context.Context) (core.Snapshot, error) {
	return core.Snapshot{}, errors.New("remote unreachable")
}

func (failingRemote) Save(context.Context, core.Snapshot) error {
	return errors.New("remote unreachable")
}

func TestHandleSyncMessageMirrorsSnapshot(t *testing.T) {
	local := memory.Seed(core.Snapshot{Points: 30})
	remote := memory.New()
	w := NewSyncWorker(local, remote)

	msg := &amqp.SnapshotSyncMessage{Revision: 3, Timestamp: time.Now()}
	require.NoError(t, w.HandleSyncMessage(context.Background(), msg))

	snap, err := remote.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30, snap.Points)
}

func TestStaleMessagesAreSkipped(t *testing.T) {
	local := memory.Seed(core.Snapshot{Points: 10})
	remote := memory.New()
	w := NewSyncWorker(local, remote)
	ctx := context.Background()

	require.NoError(t, w.HandleSyncMessage(ctx, &amqp.SnapshotSyncMessage{Revision: 5}))

	// State moved on; a lower-revision message must not overwrite.
	require.NoError(t, local.Save(ctx, core.Snapshot{Points: 20}))
	require.NoError(t, w.HandleSyncMessage(ctx, &amqp.SnapshotSyncMessage{Revision: 3}))

	snap, err := remote.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Points, "stale message skipped")

	require.NoError(t, w.HandleSyncMessage(ctx, &amqp.SnapshotSyncMessage{Revision: 6}))
	snap, err = remote.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, snap.Points)
}

func TestHandleSyncMessageRemoteFailure(t *testing.T) {
	local := memory.Seed(core.Snapshot{Points: 10})
	w := NewSyncWorker(local, failingRemote{})

	err := w.HandleSyncMessage(context.Background(), &amqp.SnapshotSyncMessage{Revision: 1})
	require.Error(t, err)

	// The failed attempt must not mark the revision as mirrored.
	remote := memory.New()
	w2 := NewSyncWorker(local, remote)
	require.NoError(t, w2.HandleSyncMessage(context.Background(), &amqp.SnapshotSyncMessage{Revision: 1}))
}

func TestStartupSyncCheck(t *testing.T) {
	local := memory.Seed(core.Snapshot{Points: 40})
	remote := memory.New()
	w := NewSyncWorker(local, remote)

	require.NoError(t, w.StartupSyncCheck(context.Background()))

	snap, err := remote.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 40, snap.Points)
}

func TestRunPeriodicStopsOnContextCancel(t *testing.T) {
	local := memory.Seed(core.Snapshot{Points: 10})
	remote := memory.New()
	w := NewSyncWorker(local, remote)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.RunPeriodic(ctx, 10*time.Millisecond) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}

	snap, err := remote.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Points, "periodic pass mirrored the snapshot")
}
