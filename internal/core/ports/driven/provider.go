package driven

import (
	"context"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

// OAuthHandler talks to the provider's authorization and token endpoints.
type OAuthHandler interface {
	// BuildAuthURL builds the authorization URL the user is redirected to.
	BuildAuthURL(creds domain.ProviderCredentials, state string) string

	// ExchangeCode exchanges an authorization code for a token grant.
	ExchangeCode(ctx context.Context, creds domain.ProviderCredentials, code string) (*domain.TokenGrant, error)

	// RefreshToken exchanges a refresh token using the given client identity.
	// A provider rejection is returned as *domain.ProviderError.
	RefreshToken(ctx context.Context, identity domain.ClientIdentity, refreshToken string) (*domain.TokenGrant, error)
}

// ActivityFetcher retrieves pages of the user's activity list.
type ActivityFetcher interface {
	// FetchPage returns one page (1-based). An empty slice means there is no more data.
	// Throttling is retried internally; exhaustion returns *domain.RateLimitExceededError.
	FetchPage(ctx context.Context, accessToken string, page int) ([]domain.RawActivity, error)
}

// RunDynamicsDeriver estimates gait metrics the provider did not report.
type RunDynamicsDeriver interface {
	Derive(in domain.RunDynamicsInput) domain.RunDynamics
}
