package mocks

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

// MockOAuthStateSigner issues readable "state:<user>" values for testing.
type MockOAuthStateSigner struct{}

// NewMockOAuthStateSigner creates a new MockOAuthStateSigner
func NewMockOAuthStateSigner() *MockOAuthStateSigner {
	return &MockOAuthStateSigner{}
}

func (m *MockOAuthStateSigner) Sign(userID string) (string, error) {
	return "state:" + userID, nil
}

func (m *MockOAuthStateSigner) Verify(state string) (string, error) {
	userID, ok := strings.CutPrefix(state, "state:")
	if !ok || userID == "" {
		return "", fmt.Errorf("%w: unrecognised state", domain.ErrInvalidState)
	}
	return userID, nil
}
