package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

// MockProfileStore is a mock implementation of ProfileStore for testing
type MockProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*domain.UserProfile
}

// NewMockProfileStore creates a new MockProfileStore
func NewMockProfileStore() *MockProfileStore {
	return &MockProfileStore{
		profiles: make(map[string]*domain.UserProfile),
	}
}

func (m *MockProfileStore) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// Put seeds a profile.
func (m *MockProfileStore) Put(profile *domain.UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.UserID] = profile
}
