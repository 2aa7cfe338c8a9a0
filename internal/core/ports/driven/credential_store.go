package driven

import (
	"context"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

// CredentialStore persists per-user provider application identities.
// Values pass through encrypted; the store never sees plaintext.
type CredentialStore interface {
	// Get returns the stored row or domain.ErrNotFound.
	Get(ctx context.Context, userID string) (*domain.StoredCredentials, error)

	// Save creates or replaces the row for creds.UserID.
	Save(ctx context.Context, creds *domain.StoredCredentials) error
}
