package domain

import (
	"strings"
	"time"
)

// ProviderCredentials is the OAuth application identity a user syncs with.
// Values are plaintext here; stores only ever see encrypted values.
type ProviderCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"-"` // Never serialize
	RedirectURI  string `json:"redirect_uri"`
}

// IsComplete returns true when all three fields are set.
// Partial configuration is never treated as usable.
func (c *ProviderCredentials) IsComplete() bool {
	return strings.TrimSpace(c.ClientID) != "" &&
		strings.TrimSpace(c.ClientSecret) != "" &&
		strings.TrimSpace(c.RedirectURI) != ""
}

// StoredCredentials is the persisted, encrypted form of ProviderCredentials.
// Empty strings mean the column is not set.
type StoredCredentials struct {
	UserID       string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	UpdatedAt    time.Time
}

// IsComplete returns true when every encrypted column is present.
func (s *StoredCredentials) IsComplete() bool {
	return s.ClientID != "" && s.ClientSecret != "" && s.RedirectURI != ""
}

// ClientIdentity is the client id/secret pair used at the token endpoint.
type ClientIdentity struct {
	ClientID     string
	ClientSecret string
}

// CredentialStatus is a safe view of a user's provider setup.
type CredentialStatus struct {
	Configured bool       `json:"configured"`
	Connected  bool       `json:"connected"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Pinned     bool       `json:"pinned"`
}
