package domain

import "time"

// RefreshWindow is how close to expiry an access token may get before it is refreshed.
const RefreshWindow = 60 * time.Second

// ProviderToken is the persisted token state for a user.
// AccessToken, RefreshToken and the override fields hold encrypted values,
// or legacy plaintext for rows written before encryption was introduced.
type ProviderToken struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time

	// Application identity that minted the current refresh token.
	// Empty until the first refresh stamps it.
	OverrideClientID     string
	OverrideClientSecret string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasOverride returns true if the token lineage is pinned to an identity.
func (t *ProviderToken) HasOverride() bool {
	return t.OverrideClientID != "" && t.OverrideClientSecret != ""
}

// NeedsRefresh returns true unless the token expires more than RefreshWindow after now.
func (t *ProviderToken) NeedsRefresh(now time.Time) bool {
	return !t.ExpiresAt.After(now.Add(RefreshWindow))
}

// TokenGrant is the result of a token endpoint exchange.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}
