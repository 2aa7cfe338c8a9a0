package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

// MockTokenStore is a mock implementation of TokenStore for testing.
// Rows are copied on the way in and out so tests observe persisted state only.
type MockTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]*domain.ProviderToken

	saveCalls          int
	updateSecretsCalls int

	// Optional hooks
	SaveFn func(token *domain.ProviderToken) error
}

// NewMockTokenStore creates a new MockTokenStore
func NewMockTokenStore() *MockTokenStore {
	return &MockTokenStore{
		tokens: make(map[string]*domain.ProviderToken),
	}
}

func (m *MockTokenStore) Get(ctx context.Context, userID string) (*domain.ProviderToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tokens[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockTokenStore) Save(ctx context.Context, token *domain.ProviderToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.SaveFn != nil {
		if err := m.SaveFn(token); err != nil {
			return err
		}
	}
	cp := *token
	m.tokens[token.UserID] = &cp
	return nil
}

func (m *MockTokenStore) UpdateSecrets(ctx context.Context, userID, accessToken, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateSecretsCalls++
	t, ok := m.tokens[userID]
	if !ok {
		return domain.ErrNotFound
	}
	t.AccessToken = accessToken
	t.RefreshToken = refreshToken
	return nil
}

func (m *MockTokenStore) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[userID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.tokens, userID)
	return nil
}

// Put seeds a row without counting it as a Save (for test setup).
func (m *MockTokenStore) Put(token *domain.ProviderToken) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *token
	m.tokens[token.UserID] = &cp
}

// SaveCalls returns the number of Save calls.
func (m *MockTokenStore) SaveCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saveCalls
}

// UpdateSecretsCalls returns the number of UpdateSecrets calls.
func (m *MockTokenStore) UpdateSecretsCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.updateSecretsCalls
}
