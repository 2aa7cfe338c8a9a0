package driven

import (
	"context"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

// ProfileStore provides read-only access to user physiology.
type ProfileStore interface {
	// Get returns the profile or domain.ErrNotFound.
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
}
