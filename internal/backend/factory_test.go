package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thrifty/internal/core"
)

func TestCreateMemoryBackend(t *testing.T) {
	f := NewFactory(nil)
	res, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend})
	require.NoError(t, err)
	assert.NotNil(t, res.Store)
	assert.NotNil(t, res.Users)
	assert.Nil(t, res.Remote)
	assert.Nil(t, res.Publisher)
}

func TestCreateFileBackend(t *testing.T) {
	f := NewFactory(nil)
	dir := t.TempDir()
	res, err := f.CreateBackend(context.Background(), Config{Type: FileBackend, DataDir: dir})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, res.Store.Save(ctx, core.Snapshot{Points: 10}))
	snap, err := res.Store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Points)
}

func TestCreateSQLiteBackend(t *testing.T) {
	f := NewFactory(nil)
	res, err := f.CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "thrifty.db"),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Cleanup)
	defer res.Cleanup()

	assert.NotNil(t, res.Users, "sqlite backend provides the durable user store")

	ctx := context.Background()
	require.NoError(t, res.Store.Save(ctx, core.Snapshot{Points: 20}))
	snap, err := res.Store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, snap.Points)
}

func TestConfigValidation(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	_, err := f.CreateBackend(ctx, Config{Type: "postgres"})
	assert.Error(t, err)

	_, err = f.CreateBackend(ctx, Config{Type: SQLiteBackend})
	assert.Error(t, err, "sqlite requires a db path")

	_, err = f.CreateBackend(ctx, Config{Type: FileBackend})
	assert.Error(t, err, "file requires a data dir")

	_, err = f.CreateBackend(ctx, Config{Type: MemoryBackend, RemoteBackend: "s3"})
	assert.Error(t, err, "s3 remote requires a bucket")
}
