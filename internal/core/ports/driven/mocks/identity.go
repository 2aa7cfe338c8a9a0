package mocks

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

// MockIdentityVerifier accepts bearer tokens of the form "user:<id>".
type MockIdentityVerifier struct{}

// NewMockIdentityVerifier creates a new MockIdentityVerifier
func NewMockIdentityVerifier() *MockIdentityVerifier {
	return &MockIdentityVerifier{}
}

func (m *MockIdentityVerifier) UserIDFromToken(token string) (string, error) {
	userID, ok := strings.CutPrefix(token, "user:")
	if !ok || userID == "" {
		return "", fmt.Errorf("%w: unrecognised token", domain.ErrUnauthorized)
	}
	return userID, nil
}
