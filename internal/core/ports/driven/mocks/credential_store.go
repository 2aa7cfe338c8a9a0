package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

// MockCredentialStore is a mock implementation of CredentialStore for testing
type MockCredentialStore struct {
	mu    sync.RWMutex
	creds map[string]*domain.StoredCredentials
}

// NewMockCredentialStore creates a new MockCredentialStore
func NewMockCredentialStore() *MockCredentialStore {
	return &MockCredentialStore{
		creds: make(map[string]*domain.StoredCredentials),
	}
}

func (m *MockCredentialStore) Get(ctx context.Context, userID string) (*domain.StoredCredentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.creds[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCredentialStore) Save(ctx context.Context, creds *domain.StoredCredentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *creds
	m.creds[creds.UserID] = &cp
	return nil
}
