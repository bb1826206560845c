package snapshot_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"thrifty/internal/core"
	"thrifty/internal/snapshot"
	"thrifty/internal/snapshot/memory"
)

// failing wraps a store and fails every call.
type failing struct{}

func (failing) Load(context.Context) (core.Snapshot, error) {
	return core.Snapshot{}, errors.New("remote unreachable")
}

func (failing) Save(context.Context, core.Snapshot) error {
	return errors.New("remote unreachable")
}

func TestTieredSaveWritesBothTiers(t *testing.T) {
	primary := memory.New()
	fallback := memory.New()
	tiered := snapshot.NewTiered(primary, fallback)

	snap := core.Snapshot{Points: 30}
	require.NoError(t, tiered.Save(context.Background(), snap))

	p, err := primary.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 30, p.Points)

	f, err := fallback.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 30, f.Points)
}

func TestTieredSavePrimaryFailureStillWritesFallback(t *testing.T) {
	fallback := memory.New()
	tiered := snapshot.NewTiered(failing{}, fallback)

	err := tiered.Save(context.Background(), core.Snapshot{Points: 10})
	require.Error(t, err)

	var perr *snapshot.PersistenceError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "primary", perr.Backend)

	f, loadErr := fallback.Load(context.Background())
	require.NoError(t, loadErr)
	require.Equal(t, 10, f.Points, "fallback must hold the state despite the primary failure")
}

func TestTieredLoadFallsBack(t *testing.T) {
	fallback := memory.Seed(core.Snapshot{Points: 40})
	tiered := snapshot.NewTiered(failing{}, fallback)

	snap, err := tiered.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 40, snap.Points)
}

func TestTieredLoadPrefersPrimary(t *testing.T) {
	primary := memory.Seed(core.Snapshot{Points: 1})
	fallback := memory.Seed(core.Snapshot{Points: 2})
	tiered := snapshot.NewTiered(primary, fallback)

	snap, err := tiered.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, snap.Points)
}
