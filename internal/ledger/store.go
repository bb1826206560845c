// Package ledger owns the authoritative transaction list for a session
// and every mutation on it. Each mutation persists a snapshot and
// re-evaluates the gamification rules; derived aggregates are recomputed
// from the full list on every read.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"thrifty/internal/core"
	"thrifty/internal/gamification"
	"thrifty/internal/snapshot"
)

// Store is the finance-ledger state engine. There is one logical writer
// (the active session); the mutex only guards against the HTTP layer
// serving concurrent requests.
type Store struct {
	mu sync.Mutex

	snapshots snapshot.Store

	transactions []core.Transaction
	points       int
	badges       []core.Badge
	budgets      []core.Budget
	goals        []core.Goal

	revision    uint64
	lastSaveErr error

	// OnBadgeUnlocked, when set, is called once per newly unlocked badge
	// in rule-declaration order. Set before first use; not synchronized.
	OnBadgeUnlocked func(core.Badge)

	now   func() time.Time
	newID func() string
}

// AddResult is the outcome of a successful add: the finalized record, the
// point total after the fixed reward, badges this mutation unlocked, and
// whether the durable write is still pending after a save failure.
type AddResult struct {
	Transaction core.Transaction
	Points      int
	Unlocked    []core.Badge
	SyncPending bool
}

// DeleteResult reports an idempotent delete. Deleted is false when the id
// was absent; that is a no-op, not an error.
type DeleteResult struct {
	Deleted     bool
	SyncPending bool
}

// GamificationView is the rewards state exposed to the UI layer.
type GamificationView struct {
	Points   int          `json:"points"`
	Level    int          `json:"level"`
	Progress int          `json:"progress"`
	Badges   []core.Badge `json:"badges"`
}

// BudgetStatus pairs a configured budget with the spent amount derived
// from the ledger at read time.
type BudgetStatus struct {
	core.Budget
	Spent core.Money `json:"spent"`
}

// GoalStatus pairs a goal with its derived completion percentage.
type GoalStatus struct {
	core.Goal
	Percent float64 `json:"percent"`
}

// Open loads the persisted snapshot and returns a ready store.
func Open(ctx context.Context, snapshots snapshot.Store) (*Store, error) {
	snap, err := snapshots.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	s := &Store{
		snapshots:    snapshots,
		transactions: snap.Transactions,
		points:       snap.Points,
		badges:       snap.Badges,
		budgets:      snap.Budgets,
		goals:        snap.Goals,
		now:          time.Now,
		newID:        func() string { return uuid.New().String() },
	}
	slog.InfoContext(ctx, "Ledger loaded",
		"transactions", len(s.transactions),
		"points", s.points,
		"badges", len(s.badges))
	return s, nil
}

// AddTransaction validates the draft, assigns a fresh id, appends the
// record (newest last), grants the fixed point reward and re-evaluates
// badges. The snapshot save happens before returning; a failed save is
// reported through SyncPending, never by rolling back.
func (s *Store) AddTransaction(ctx context.Context, draft core.Draft) (AddResult, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return AddResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := core.Transaction{
		ID:          s.newID(),
		Description: draft.Description,
		Amount:      draft.Amount,
		Type:        draft.Type,
		Category:    draft.Category,
		Date:        draft.Date,
	}
	s.transactions = append(s.transactions, tx)
	s.points += gamification.PointsPerTransaction

	unlocked := s.evaluateLocked(ctx)
	pending := s.persistLocked(ctx)

	slog.InfoContext(ctx, "Transaction added",
		"id", tx.ID,
		"type", string(tx.Type),
		"category", string(tx.Category),
		"amount_cents", tx.Amount.Cents,
		"points", s.points)

	return AddResult{
		Transaction: tx,
		Points:      s.points,
		Unlocked:    unlocked,
		SyncPending: pending,
	}, nil
}

// DeleteTransaction removes the record with the given id. Calling it
// twice has the same observable effect as calling it once.
func (s *Store) DeleteTransaction(ctx context.Context, id string) DeleteResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, t := range s.transactions {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return DeleteResult{}
	}
	s.transactions = append(s.transactions[:idx], s.transactions[idx+1:]...)

	s.evaluateLocked(ctx)
	pending := s.persistLocked(ctx)

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return DeleteResult{Deleted: true, SyncPending: pending}
}

// ListTransactions returns the ordered collection, oldest first.
func (s *Store) ListTransactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.transactions...)
}

// Aggregate recomputes the summary from the full transaction list.
func (s *Store) Aggregate() core.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Summarize(s.transactions)
}

// Gamification returns the current rewards view.
func (s *Store) Gamification() GamificationView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return GamificationView{
		Points:   s.points,
		Level:    gamification.Level(s.points),
		Progress: gamification.Progress(s.points),
		Badges:   append([]core.Badge(nil), s.badges...),
	}
}

// SetBudget creates a budget, or replaces the existing budget for the
// same category.
func (s *Store) SetBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i, existing := range s.budgets {
		if existing.Category == b.Category {
			b.ID = existing.ID
			s.budgets[i] = b
			replaced = true
			break
		}
	}
	if !replaced {
		b.ID = s.newID()
		s.budgets = append(s.budgets, b)
	}
	s.persistLocked(ctx)
	return b, nil
}

// DeleteBudget removes a budget by id; absent ids are a no-op.
func (s *Store) DeleteBudget(ctx context.Context, id string) DeleteResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.budgets {
		if b.ID == id {
			s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
			pending := s.persistLocked(ctx)
			return DeleteResult{Deleted: true, SyncPending: pending}
		}
	}
	return DeleteResult{}
}

// Budgets returns every budget with its spent amount derived from the
// current ledger.
func (s *Store) Budgets() []BudgetStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := core.Summarize(s.transactions)
	spent := make(map[core.Category]core.Money, len(summary.Categories))
	for _, c := range summary.Categories {
		spent[c.Category] = c.Amount
	}
	out := make([]BudgetStatus, len(s.budgets))
	for i, b := range s.budgets {
		out[i] = BudgetStatus{Budget: b, Spent: spent[b.Category]}
	}
	return out
}

// SetGoal creates a goal when the id is empty, or updates it otherwise.
func (s *Store) SetGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = s.newID()
		s.goals = append(s.goals, g)
	} else {
		found := false
		for i, existing := range s.goals {
			if existing.ID == g.ID {
				s.goals[i] = g
				found = true
				break
			}
		}
		if !found {
			return core.Goal{}, core.ErrNotFound
		}
	}
	s.persistLocked(ctx)
	return g, nil
}

// DeleteGoal removes a goal by id; absent ids are a no-op.
func (s *Store) DeleteGoal(ctx context.Context, id string) DeleteResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.goals {
		if g.ID == id {
			s.goals = append(s.goals[:i], s.goals[i+1:]...)
			pending := s.persistLocked(ctx)
			return DeleteResult{Deleted: true, SyncPending: pending}
		}
	}
	return DeleteResult{}
}

// Goals returns every goal with its completion percentage.
func (s *Store) Goals() []GoalStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]GoalStatus, len(s.goals))
	for i, g := range s.goals {
		percent := 0.0
		if g.Target.Cents > 0 {
			percent = float64(g.Current.Cents) / float64(g.Target.Cents) * 100
			if percent > 100 {
				percent = 100
			}
		}
		out[i] = GoalStatus{Goal: g, Percent: percent}
	}
	return out
}

// Snapshot returns a deep copy of the current durable state.
func (s *Store) Snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Revision increments on every mutation. Cache keys and sync messages use
// it to tell ledger states apart.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// LastSaveError reports the most recent snapshot write failure, or nil
// when the last write succeeded.
func (s *Store) LastSaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaveErr
}

func (s *Store) snapshotLocked() core.Snapshot {
	return core.Snapshot{
		Transactions: s.transactions,
		Points:       s.points,
		Badges:       s.badges,
		Budgets:      s.budgets,
		Goals:        s.goals,
	}.Clone()
}

// evaluateLocked re-runs the gamification rules and notifies about newly
// unlocked badges in rule order.
func (s *Store) evaluateLocked(ctx context.Context) []core.Badge {
	res := gamification.Evaluate(len(s.transactions), s.points, s.badges, s.now())
	s.badges = res.Badges
	for _, b := range res.Unlocked {
		slog.InfoContext(ctx, "Badge unlocked", "badge", b.Name)
		if s.OnBadgeUnlocked != nil {
			s.OnBadgeUnlocked(b)
		}
	}
	return res.Unlocked
}

// persistLocked saves the snapshot and reports whether the write is still
// pending. In-memory state stays authoritative on failure; the error is
// logged and kept for LastSaveError.
func (s *Store) persistLocked(ctx context.Context) bool {
	s.revision++
	if err := s.snapshots.Save(ctx, s.snapshotLocked()); err != nil {
		s.lastSaveErr = err
		slog.WarnContext(ctx, "Snapshot save failed, keeping in-memory state",
			"error", err, "revision", s.revision)
		return true
	}
	s.lastSaveErr = nil
	return false
}
