// Package storage is the SQLite tier: a durable snapshot store plus the
// account table. The snapshot is written transactionally as a full
// replace, so a crash mid-save never leaves a mixed state.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"

	"thrifty/internal/auth"
	"thrifty/internal/core"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load reads the full snapshot. Transactions and goals come back in
// insertion order.
func (r *SQLiteRepository) Load(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount_cents, type, category, date
		 FROM transactions ORDER BY position`)
	if err != nil {
		return snap, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t core.Transaction
		var date string
		if err := rows.Scan(&t.ID, &t.Description, &t.Amount.Cents, &t.Type, &t.Category, &date); err != nil {
			return snap, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Date, err = core.ParseDate(date); err != nil {
			return snap, fmt.Errorf("parse transaction date: %w", err)
		}
		snap.Transactions = append(snap.Transactions, t)
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate transactions: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, `SELECT points FROM profile WHERE id = 1`).Scan(&snap.Points); err != nil {
		return snap, fmt.Errorf("query profile: %w", err)
	}

	badgeRows, err := r.db.QueryContext(ctx,
		`SELECT name, description, icon, earned_at FROM badges ORDER BY earned_at, name`)
	if err != nil {
		return snap, fmt.Errorf("query badges: %w", err)
	}
	defer badgeRows.Close()
	for badgeRows.Next() {
		var b core.Badge
		var earned string
		if err := badgeRows.Scan(&b.Name, &b.Description, &b.Icon, &earned); err != nil {
			return snap, fmt.Errorf("scan badge: %w", err)
		}
		if b.EarnedAt, err = time.Parse(time.RFC3339, earned); err != nil {
			return snap, fmt.Errorf("parse badge timestamp: %w", err)
		}
		snap.Badges = append(snap.Badges, b)
	}
	if err := badgeRows.Err(); err != nil {
		return snap, fmt.Errorf("iterate badges: %w", err)
	}

	budgetRows, err := r.db.QueryContext(ctx,
		`SELECT id, category, limit_cents FROM budgets ORDER BY category`)
	if err != nil {
		return snap, fmt.Errorf("query budgets: %w", err)
	}
	defer budgetRows.Close()
	for budgetRows.Next() {
		var b core.Budget
		if err := budgetRows.Scan(&b.ID, &b.Category, &b.Limit.Cents); err != nil {
			return snap, fmt.Errorf("scan budget: %w", err)
		}
		snap.Budgets = append(snap.Budgets, b)
	}
	if err := budgetRows.Err(); err != nil {
		return snap, fmt.Errorf("iterate budgets: %w", err)
	}

	goalRows, err := r.db.QueryContext(ctx,
		`SELECT id, name, target_cents, current_cents, deadline, icon FROM goals ORDER BY position`)
	if err != nil {
		return snap, fmt.Errorf("query goals: %w", err)
	}
	defer goalRows.Close()
	for goalRows.Next() {
		var g core.Goal
		var deadline, icon sql.NullString
		if err := goalRows.Scan(&g.ID, &g.Name, &g.Target.Cents, &g.Current.Cents, &deadline, &icon); err != nil {
			return snap, fmt.Errorf("scan goal: %w", err)
		}
		if deadline.Valid && deadline.String != "" {
			if g.Deadline, err = core.ParseDate(deadline.String); err != nil {
				return snap, fmt.Errorf("parse goal deadline: %w", err)
			}
		}
		g.Icon = icon.String
		snap.Goals = append(snap.Goals, g)
	}
	if err := goalRows.Err(); err != nil {
		return snap, fmt.Errorf("iterate goals: %w", err)
	}

	return snap, nil
}

// Save replaces the stored snapshot inside a single transaction.
func (r *SQLiteRepository) Save(ctx context.Context, snap core.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"transactions", "badges", "budgets", "goals"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, t := range snap.Transactions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, description, amount_cents, type, category, date)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			t.ID, t.Description, t.Amount.Cents, string(t.Type), string(t.Category),
			t.Date.Format(dateLayout))
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE profile SET points = ? WHERE id = 1`, snap.Points); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	for _, b := range snap.Badges {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO badges (name, description, icon, earned_at) VALUES (?, ?, ?, ?)`,
			b.Name, b.Description, b.Icon, b.EarnedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("insert badge %s: %w", b.Name, err)
		}
	}

	for _, b := range snap.Budgets {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (id, category, limit_cents) VALUES (?, ?, ?)`,
			b.ID, string(b.Category), b.Limit.Cents)
		if err != nil {
			return fmt.Errorf("insert budget %s: %w", b.ID, err)
		}
	}

	for _, g := range snap.Goals {
		deadline := ""
		if !g.Deadline.IsZero() {
			deadline = g.Deadline.Format(dateLayout)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO goals (id, name, target_cents, current_cents, deadline, icon)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			g.ID, g.Name, g.Target.Cents, g.Current.Cents, deadline, g.Icon)
		if err != nil {
			return fmt.Errorf("insert goal %s: %w", g.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot saved to SQLite",
		"transactions", len(snap.Transactions),
		"points", snap.Points,
		"badges", len(snap.Badges))
	return nil
}

// CreateUser implements auth.UserStore.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u auth.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		var serr *sqlite.Error
		if errors.As(err, &serr) && serr.Code() == sqlitelib.SQLITE_CONSTRAINT_UNIQUE {
			return auth.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UserByUsername implements auth.UserStore.
func (r *SQLiteRepository) UserByUsername(ctx context.Context, username string) (auth.User, error) {
	var u auth.User
	var created string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`,
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("query user: %w", err)
	}
	if u.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return auth.User{}, fmt.Errorf("parse user timestamp: %w", err)
	}
	return u, nil
}

// UserByID implements auth.UserStore.
func (r *SQLiteRepository) UserByID(ctx context.Context, id string) (auth.User, error) {
	var u auth.User
	var created string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`,
		id).Scan(&u.ID, &u.Username, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("query user: %w", err)
	}
	if u.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return auth.User{}, fmt.Errorf("parse user timestamp: %w", err)
	}
	return u, nil
}
