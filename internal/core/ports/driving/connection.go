package driving

import (
	"context"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

// ConnectionService manages a user's provider setup and authorization.
type ConnectionService interface {
	// SaveCredentials stores the user's OAuth application identity.
	SaveCredentials(ctx context.Context, userID string, creds domain.ProviderCredentials) error

	// CredentialStatus reports setup state without exposing secrets.
	CredentialStatus(ctx context.Context, userID string) (*domain.CredentialStatus, error)

	// AuthorizeURL returns the provider URL that starts the OAuth handshake.
	AuthorizeURL(ctx context.Context, userID string) (string, error)

	// CompleteAuthorization handles the provider callback and returns the user id.
	CompleteAuthorization(ctx context.Context, state, code string) (string, error)

	// Disconnect deletes the user's token.
	Disconnect(ctx context.Context, userID string) error
}
