package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thrifty/internal/auth"
	"thrifty/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "thrifty.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestLoadFreshDatabaseIsEmpty(t *testing.T) {
	repo := newTestRepo(t)
	snap, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Transactions)
	assert.Zero(t, snap.Points)
	assert.Empty(t, snap.Badges)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := core.Snapshot{
		Transactions: []core.Transaction{
			{
				ID:          "t1",
				Description: "Coffee",
				Amount:      core.Money{Cents: 15000},
				Type:        core.TypeExpense,
				Category:    core.CategoryFood,
				Date:        core.NewDate(2024, 1, 15),
			},
			{
				ID:          "t2",
				Description: "Salary",
				Amount:      core.Money{Cents: 500000},
				Type:        core.TypeIncome,
				Category:    core.CategorySalary,
				Date:        core.NewDate(2024, 1, 31),
			},
		},
		Points: 20,
		Badges: []core.Badge{{
			Name:        "Novice Tracker",
			Description: "Added your first transaction",
			Icon:        "medal",
			EarnedAt:    time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		}},
		Budgets: []core.Budget{{
			ID:       "b1",
			Category: core.CategoryFood,
			Limit:    core.Money{Cents: 50000},
		}},
		Goals: []core.Goal{{
			ID:       "g1",
			Name:     "New Laptop",
			Target:   core.Money{Cents: 8000000},
			Current:  core.Money{Cents: 4000000},
			Deadline: core.NewDate(2024, 12, 31),
			Icon:     "laptop",
		}},
	}
	require.NoError(t, repo.Save(ctx, in))

	out, err := repo.Load(ctx)
	require.NoError(t, err)

	require.Len(t, out.Transactions, 2)
	assert.Equal(t, "t1", out.Transactions[0].ID, "insertion order preserved")
	assert.Equal(t, "Coffee", out.Transactions[0].Description)
	assert.Equal(t, int64(15000), out.Transactions[0].Amount.Cents)
	assert.Equal(t, core.TypeExpense, out.Transactions[0].Type)
	assert.Equal(t, "2024-01-15", out.Transactions[0].Date.Format("2006-01-02"))

	assert.Equal(t, 20, out.Points)
	require.Len(t, out.Badges, 1)
	assert.Equal(t, "Novice Tracker", out.Badges[0].Name)
	assert.Equal(t, in.Badges[0].EarnedAt, out.Badges[0].EarnedAt)

	require.Len(t, out.Budgets, 1)
	assert.Equal(t, int64(50000), out.Budgets[0].Limit.Cents)

	require.Len(t, out.Goals, 1)
	assert.Equal(t, "New Laptop", out.Goals[0].Name)
	assert.Equal(t, "2024-12-31", out.Goals[0].Deadline.Format("2006-01-02"))
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := core.Snapshot{
		Transactions: []core.Transaction{{
			ID: "t1", Description: "Coffee", Amount: core.Money{Cents: 100},
			Type: core.TypeExpense, Category: core.CategoryFood, Date: core.NewDate(2024, 1, 1),
		}},
		Points: 10,
	}
	require.NoError(t, repo.Save(ctx, first))

	second := core.Snapshot{Points: 10}
	require.NoError(t, repo.Save(ctx, second))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, out.Transactions, "deleted rows must not resurface")
	assert.Equal(t, 10, out.Points)
}

func TestGoalWithoutDeadline(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, core.Snapshot{
		Goals: []core.Goal{{ID: "g1", Name: "Rainy day", Target: core.Money{Cents: 100000}}},
	}))
	out, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out.Goals, 1)
	assert.True(t, out.Goals[0].Deadline.IsZero())
}

func TestUserStore(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := auth.User{
		ID:           "u1",
		Username:     "alice",
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.CreateUser(ctx, u))

	got, err := repo.UserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	err = repo.CreateUser(ctx, auth.User{ID: "u2", Username: "alice", PasswordHash: "x", CreatedAt: u.CreatedAt})
	assert.ErrorIs(t, err, auth.ErrUserExists)

	byID, err := repo.UserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = repo.UserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = repo.UserByID(ctx, "nobody")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestRepositorySurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thrifty.db")
	ctx := context.Background()

	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, core.Snapshot{Points: 30}))
	require.NoError(t, repo.Close())

	reopened, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer reopened.Close()

	out, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, out.Points)
}
