package auth

import (
	"context"
	"sync"
)

// MemoryUserStore keeps accounts in process memory. Used by the memory
// backend and in tests.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]User)}
}

func (m *MemoryUserStore) CreateUser(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return ErrUserExists
	}
	m.users[u.Username] = u
	return nil
}

func (m *MemoryUserStore) UserByUsername(_ context.Context, username string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (m *MemoryUserStore) UserByID(_ context.Context, id string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrInvalidCredentials
}
