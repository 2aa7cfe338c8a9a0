package driven

import (
	"context"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

// TokenStore persists per-user provider token state.
type TokenStore interface {
	// Get returns the token row or domain.ErrNotFound.
	Get(ctx context.Context, userID string) (*domain.ProviderToken, error)

	// Save creates or replaces the full row, including expiry and override.
	Save(ctx context.Context, token *domain.ProviderToken) error

	// UpdateSecrets rewrites only the access and refresh token columns.
	// expires_at and the override columns are left untouched.
	UpdateSecrets(ctx context.Context, userID, accessToken, refreshToken string) error

	// Delete removes the row. Returns domain.ErrNotFound if there was none.
	Delete(ctx context.Context, userID string) error
}
