// Package services orchestrates the ledger store, the advisor and the
// async sync pipeline behind one facade used by the HTTP layer.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"thrifty/internal/advisor"
	"thrifty/internal/cache"
	"thrifty/internal/core"
	"thrifty/internal/ledger"
)

// SyncPublisher notifies the sync worker that the snapshot changed.
// amqp.Client satisfies it; direct-mode deployments run without one.
type SyncPublisher interface {
	PublishSnapshotSync(ctx context.Context, revision uint64) error
	Close() error
}

// LedgerService applies mutations locally first, then publishes a sync
// message. A publish failure never fails the request.
type LedgerService struct {
	store     *ledger.Store
	responder *advisor.Responder
	replies   *cache.LRUCache[string]
	publisher SyncPublisher
}

func NewLedgerService(store *ledger.Store, publisher SyncPublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		responder: advisor.New(),
		replies:   cache.NewLRUCache[string](256, 5*time.Minute),
		publisher: publisher,
	}
}

// ReplyCache exposes the advisor reply cache for cleanup registration.
func (s *LedgerService) ReplyCache() cache.Cleaner {
	return s.replies
}

func (s *LedgerService) AddTransaction(ctx context.Context, draft core.Draft) (ledger.AddResult, error) {
	res, err := s.store.AddTransaction(ctx, draft)
	if err != nil {
		return ledger.AddResult{}, err
	}
	s.publishSync(ctx)
	return res, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) ledger.DeleteResult {
	res := s.store.DeleteTransaction(ctx, id)
	if res.Deleted {
		s.publishSync(ctx)
	}
	return res
}

func (s *LedgerService) ListTransactions() []core.Transaction {
	return s.store.ListTransactions()
}

func (s *LedgerService) Summary() core.Summary {
	return s.store.Aggregate()
}

func (s *LedgerService) Gamification() ledger.GamificationView {
	return s.store.Gamification()
}

func (s *LedgerService) SetBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	out, err := s.store.SetBudget(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}
	s.publishSync(ctx)
	return out, nil
}

func (s *LedgerService) DeleteBudget(ctx context.Context, id string) ledger.DeleteResult {
	res := s.store.DeleteBudget(ctx, id)
	if res.Deleted {
		s.publishSync(ctx)
	}
	return res
}

func (s *LedgerService) Budgets() []ledger.BudgetStatus {
	return s.store.Budgets()
}

func (s *LedgerService) SetGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	out, err := s.store.SetGoal(ctx, g)
	if err != nil {
		return core.Goal{}, err
	}
	s.publishSync(ctx)
	return out, nil
}

func (s *LedgerService) DeleteGoal(ctx context.Context, id string) ledger.DeleteResult {
	res := s.store.DeleteGoal(ctx, id)
	if res.Deleted {
		s.publishSync(ctx)
	}
	return res
}

func (s *LedgerService) Goals() []ledger.GoalStatus {
	return s.store.Goals()
}

// Advise answers a natural-language query. Replies are cached per query
// and ledger revision, so a mutation invalidates by key change rather
// than by flushing.
func (s *LedgerService) Advise(ctx context.Context, query string) string {
	key := fmt.Sprintf("%s|%d", query, s.store.Revision())
	if reply, ok := s.replies.Get(key); ok {
		slog.DebugContext(ctx, "Advisor cache hit", "query", query)
		return reply
	}
	reply := s.responder.Respond(query, s.store.ListTransactions())
	s.replies.Set(key, reply)
	return reply
}

func (s *LedgerService) publishSync(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	revision := s.store.Revision()
	if err := s.publisher.PublishSnapshotSync(ctx, revision); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"revision", revision, "error", err)
	}
}

func (s *LedgerService) Close() error {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
