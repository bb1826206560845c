package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(NewMemoryUserStore(), "test-secret", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	u, token, err := s.Register(ctx, "alice", "correct horse battery")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.NotEmpty(t, token)

	u2, token2, err := s.Login(ctx, "alice", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, u.ID, u2.ID)
	require.NotEmpty(t, token2)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	_, _, err := s.Register(ctx, "alice", "password123")
	require.NoError(t, err)
	_, _, err = s.Register(ctx, "alice", "password456")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterRejectsWeakInput(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	_, _, err := s.Register(ctx, "al", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = s.Register(ctx, "alice", "short")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	_, _, err := s.Register(ctx, "alice", "password123")
	require.NoError(t, err)

	_, _, err = s.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = s.Login(ctx, "bob", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRoundTrip(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	u, token, err := s.Register(ctx, "alice", "password123")
	require.NoError(t, err)

	subject, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, subject)

	current, err := s.CurrentUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", current.Username)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	s := NewService(NewMemoryUserStore(), "test-secret", time.Minute)
	base := time.Now()
	s.now = func() time.Time { return base }

	_, token, err := s.Register(context.Background(), "alice", "password123")
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	a := NewService(NewMemoryUserStore(), "secret-a", time.Hour)
	b := NewService(NewMemoryUserStore(), "secret-b", time.Hour)

	_, token, err := a.Register(context.Background(), "alice", "password123")
	require.NoError(t, err)

	_, err = b.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
