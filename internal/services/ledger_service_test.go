package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thrifty/internal/core"
	"thrifty/internal/ledger"
	"thrifty/internal/snapshot/memory"
)

type recordingPublisher struct {
	revisions []uint64
	err       error
	closed    bool
}

func (p *recordingPublisher) PublishSnapshotSync(_ context.Context, revision uint64) error {
	if p.err != nil {
		return p.err
	}
	p.revisions = append(p.revisions, revision)
	return nil
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func newTestService(t *testing.T, pub SyncPublisher) *LedgerService {
	t.Helper()
	store, err := ledger.Open(context.Background(), memory.New())
	require.NoError(t, err)
	return NewLedgerService(store, pub)
}

func draft(desc string, cents int64) core.Draft {
	return core.Draft{
		Description: desc,
		Amount:      core.Money{Cents: cents},
		Type:        core.TypeExpense,
		Category:    core.CategoryFood,
		Date:        core.NewDate(2024, 1, 1),
	}
}

func TestMutationsPublishSync(t *testing.T) {
	pub := &recordingPublisher{}
	s := newTestService(t, pub)
	ctx := context.Background()

	added, err := s.AddTransaction(ctx, draft("Coffee", 15000))
	require.NoError(t, err)
	s.DeleteTransaction(ctx, added.Transaction.ID)

	assert.Equal(t, []uint64{1, 2}, pub.revisions)
}

func TestMissedDeleteDoesNotPublish(t *testing.T) {
	pub := &recordingPublisher{}
	s := newTestService(t, pub)

	res := s.DeleteTransaction(context.Background(), "missing")
	assert.False(t, res.Deleted)
	assert.Empty(t, pub.revisions)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	s := newTestService(t, pub)

	res, err := s.AddTransaction(context.Background(), draft("Coffee", 15000))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Transaction.ID)
	assert.Len(t, s.ListTransactions(), 1)
}

func TestNilPublisherIsFine(t *testing.T) {
	s := newTestService(t, nil)
	_, err := s.AddTransaction(context.Background(), draft("Coffee", 15000))
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestAdviseCachesPerRevision(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	first := s.Advise(ctx, "how is my spending")
	assert.Contains(t, first, "haven't recorded any expenses")

	_, err := s.AddTransaction(ctx, draft("Coffee", 15000))
	require.NoError(t, err)

	// New revision, new answer despite the identical query.
	second := s.Advise(ctx, "how is my spending")
	assert.Contains(t, second, "₹150")
}

func TestCloseClosesPublisher(t *testing.T) {
	pub := &recordingPublisher{}
	s := newTestService(t, pub)
	require.NoError(t, s.Close())
	assert.True(t, pub.closed)
}
