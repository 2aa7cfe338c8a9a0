package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

type mockLease struct {
	token  string
	expiry time.Time
}

// MockDistributedLock is an in-memory DistributedLock with optional hooks.
type MockDistributedLock struct {
	mu      sync.Mutex
	locks   map[string]mockLease
	issued  int
	extends int

	AcquireFn func(name string, ttl time.Duration) (bool, error)
	ReleaseFn func(name string) error
	ExtendFn  func(name string, ttl time.Duration) error
}

// NewMockDistributedLock creates a new mock distributed lock.
func NewMockDistributedLock() *MockDistributedLock {
	return &MockDistributedLock{
		locks: make(map[string]mockLease),
	}
}

func (m *MockDistributedLock) Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	if m.AcquireFn != nil {
		ok, err := m.AcquireFn(name, ttl)
		if !ok || err != nil {
			return "", ok, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if lease, held := m.locks[name]; held && time.Now().Before(lease.expiry) {
		return "", false, nil
	}
	m.issued++
	token := fmt.Sprintf("token-%d", m.issued)
	m.locks[name] = mockLease{token: token, expiry: time.Now().Add(ttl)}
	return token, true, nil
}

func (m *MockDistributedLock) Release(ctx context.Context, name, token string) error {
	if m.ReleaseFn != nil {
		return m.ReleaseFn(name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if lease, held := m.locks[name]; held && lease.token == token {
		delete(m.locks, name)
	}
	return nil
}

func (m *MockDistributedLock) Extend(ctx context.Context, name, token string, ttl time.Duration) error {
	m.mu.Lock()
	m.extends++
	m.mu.Unlock()

	if m.ExtendFn != nil {
		return m.ExtendFn(name, ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	lease, held := m.locks[name]
	if !held || lease.token != token || time.Now().After(lease.expiry) {
		return fmt.Errorf("extend lock %s: %w", name, domain.ErrLockNotHeld)
	}
	lease.expiry = time.Now().Add(ttl)
	m.locks[name] = lease
	return nil
}

func (m *MockDistributedLock) Ping(ctx context.Context) error {
	return nil
}

// IsHeld checks if a lock is currently held (for test assertions).
func (m *MockDistributedLock) IsHeld(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	lease, held := m.locks[name]
	return held && time.Now().Before(lease.expiry)
}

// SetLockHeld forces a lock to be held under a foreign token (for test setup).
func (m *MockDistributedLock) SetLockHeld(name string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks[name] = mockLease{token: "foreign", expiry: time.Now().Add(ttl)}
}

// Extends returns how many times Extend was called.
func (m *MockDistributedLock) Extends() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.extends
}
