package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driven"
)

// CredentialResolver produces a user's OAuth application identity.
type CredentialResolver struct {
	store driven.CredentialStore
	codec driven.SecretCodec
}

// NewCredentialResolver creates a new CredentialResolver.
func NewCredentialResolver(store driven.CredentialStore, codec driven.SecretCodec) *CredentialResolver {
	return &CredentialResolver{store: store, codec: codec}
}

// Resolve returns the decrypted credentials for userID.
// A missing row or any missing field is domain.ErrMissingCredentials.
func (r *CredentialResolver) Resolve(ctx context.Context, userID string) (*domain.ProviderCredentials, error) {
	stored, err := r.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrMissingCredentials
		}
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if !stored.IsComplete() {
		return nil, domain.ErrMissingCredentials
	}

	var creds domain.ProviderCredentials
	fields := []struct {
		name string
		in   string
		out  *string
	}{
		{"client id", stored.ClientID, &creds.ClientID},
		{"client secret", stored.ClientSecret, &creds.ClientSecret},
		{"redirect uri", stored.RedirectURI, &creds.RedirectURI},
	}
	for _, f := range fields {
		plaintext, _, err := r.codec.DecryptIfEncrypted(f.in)
		if err != nil {
			return nil, fmt.Errorf("decrypt %s: %w", f.name, err)
		}
		*f.out = plaintext
	}

	if !creds.IsComplete() {
		return nil, domain.ErrMissingCredentials
	}
	return &creds, nil
}
