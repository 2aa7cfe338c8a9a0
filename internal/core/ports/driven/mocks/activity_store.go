package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

// MockActivityStore is a mock implementation of ActivityStore for testing
type MockActivityStore struct {
	mu         sync.RWMutex
	activities map[string]*domain.Activity
	batches    int

	// Optional hooks
	UpsertBatchFn func(activities []*domain.Activity) error
}

// NewMockActivityStore creates a new MockActivityStore
func NewMockActivityStore() *MockActivityStore {
	return &MockActivityStore{
		activities: make(map[string]*domain.Activity),
	}
}

func (m *MockActivityStore) UpsertBatch(ctx context.Context, activities []*domain.Activity) (int, error) {
	if m.UpsertBatchFn != nil {
		if err := m.UpsertBatchFn(activities); err != nil {
			return 0, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
	written := 0
	for _, a := range activities {
		if existing, ok := m.activities[a.ExternalActivityID]; ok && existing.UserID != a.UserID {
			continue
		}
		cp := *a
		m.activities[a.ExternalActivityID] = &cp
		written++
	}
	return written, nil
}

// Seed stores an activity directly, bypassing UpsertBatch (for test setup).
func (m *MockActivityStore) Seed(a *domain.Activity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.activities[a.ExternalActivityID] = &cp
}

func (m *MockActivityStore) GetByExternalID(ctx context.Context, externalID string) (*domain.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.activities[externalID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MockActivityStore) CountByUser(ctx context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, a := range m.activities {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

// Count returns the total number of stored activities.
func (m *MockActivityStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.activities)
}

// Batches returns the number of committed batches.
func (m *MockActivityStore) Batches() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.batches
}
