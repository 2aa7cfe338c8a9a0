package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driven"
	"github.com/custodia-labs/stride-sync/internal/observability"
)

// TokenManager owns the access/refresh token pair for each user.
// It refreshes near expiry, migrates legacy plaintext rows and pins the
// client identity each refresh token lineage was minted with.
type TokenManager struct {
	tokens      driven.TokenStore
	credentials *CredentialResolver
	codec       driven.SecretCodec
	oauth       driven.OAuthHandler
	now         func() time.Time
	logger      *slog.Logger
}

// TokenManagerConfig holds dependencies for TokenManager.
type TokenManagerConfig struct {
	TokenStore  driven.TokenStore
	Credentials *CredentialResolver
	Codec       driven.SecretCodec
	OAuth       driven.OAuthHandler
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewTokenManager creates a new TokenManager.
func NewTokenManager(cfg TokenManagerConfig) *TokenManager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &TokenManager{
		tokens:      cfg.TokenStore,
		credentials: cfg.Credentials,
		codec:       cfg.Codec,
		oauth:       cfg.OAuth,
		now:         now,
		logger:      logger,
	}
}

// loadedToken is a token row with its secrets decrypted.
type loadedToken struct {
	row          *domain.ProviderToken
	accessToken  string
	refreshToken string
}

// GetValidAccessToken returns an access token that is valid for at least
// another domain.RefreshWindow, refreshing it first if needed.
func (m *TokenManager) GetValidAccessToken(ctx context.Context, userID string) (string, error) {
	tok, err := m.load(ctx, userID)
	if err != nil {
		return "", err
	}

	if !tok.row.NeedsRefresh(m.now()) {
		return tok.accessToken, nil
	}

	m.logger.Info("access token near expiry, refreshing", "user_id", userID, "expires_at", tok.row.ExpiresAt)
	return m.refresh(ctx, tok)
}

// ForceRefresh refreshes regardless of expiry. Used when the provider
// rejects an access token that still looks valid locally.
func (m *TokenManager) ForceRefresh(ctx context.Context, userID string) (string, error) {
	tok, err := m.load(ctx, userID)
	if err != nil {
		return "", err
	}

	m.logger.Info("forcing token refresh", "user_id", userID)
	return m.refresh(ctx, tok)
}

// load reads and decrypts the token row, re-encrypting legacy plaintext
// secrets in place. expires_at is never touched by the migration.
func (m *TokenManager) load(ctx context.Context, userID string) (*loadedToken, error) {
	row, err := m.tokens.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotConnected
		}
		return nil, fmt.Errorf("load token: %w", err)
	}

	access, accessEncrypted, err := m.codec.DecryptIfEncrypted(row.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("decrypt access token: %w", err)
	}
	refresh, refreshEncrypted, err := m.codec.DecryptIfEncrypted(row.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("decrypt refresh token: %w", err)
	}

	if !accessEncrypted || !refreshEncrypted {
		if err := m.migrate(ctx, row, access, refresh, accessEncrypted, refreshEncrypted); err != nil {
			return nil, err
		}
	}

	return &loadedToken{row: row, accessToken: access, refreshToken: refresh}, nil
}

func (m *TokenManager) migrate(ctx context.Context, row *domain.ProviderToken, access, refresh string, accessEncrypted, refreshEncrypted bool) error {
	var err error
	if !accessEncrypted {
		if row.AccessToken, err = m.codec.Encrypt(access); err != nil {
			return fmt.Errorf("encrypt access token: %w", err)
		}
	}
	if !refreshEncrypted {
		if row.RefreshToken, err = m.codec.Encrypt(refresh); err != nil {
			return fmt.Errorf("encrypt refresh token: %w", err)
		}
	}

	if err := m.tokens.UpdateSecrets(context.WithoutCancel(ctx), row.UserID, row.AccessToken, row.RefreshToken); err != nil {
		return fmt.Errorf("persist migrated token: %w", err)
	}

	observability.RecordSecretMigration()
	m.logger.Info("migrated legacy plaintext token", "user_id", row.UserID)
	return nil
}

// refresh runs the exchange and persists the result. It is not cancelled
// by the caller going away so a rotated refresh token is never lost.
func (m *TokenManager) refresh(ctx context.Context, tok *loadedToken) (string, error) {
	ctx = context.WithoutCancel(ctx)
	userID := tok.row.UserID

	identity, stamp, err := m.identityFor(ctx, tok.row)
	if err != nil {
		return "", err
	}

	grant, err := m.oauth.RefreshToken(ctx, identity, tok.refreshToken)
	observability.RecordTokenRefresh(err)
	if err != nil {
		m.logger.Warn("token refresh rejected", "user_id", userID, "error", err)
		return "", fmt.Errorf("refresh token: %w", err)
	}

	refreshToken := grant.RefreshToken
	if refreshToken == "" {
		refreshToken = tok.refreshToken
	}

	updated := *tok.row
	if updated.AccessToken, err = m.codec.Encrypt(grant.AccessToken); err != nil {
		return "", fmt.Errorf("encrypt access token: %w", err)
	}
	if updated.RefreshToken, err = m.codec.Encrypt(refreshToken); err != nil {
		return "", fmt.Errorf("encrypt refresh token: %w", err)
	}
	updated.ExpiresAt = grant.ExpiresAt
	updated.UpdatedAt = m.now()

	if stamp {
		if updated.OverrideClientID, err = m.codec.Encrypt(identity.ClientID); err != nil {
			return "", fmt.Errorf("encrypt override client id: %w", err)
		}
		if updated.OverrideClientSecret, err = m.codec.Encrypt(identity.ClientSecret); err != nil {
			return "", fmt.Errorf("encrypt override client secret: %w", err)
		}
	}

	if err := m.tokens.Save(ctx, &updated); err != nil {
		return "", fmt.Errorf("persist refreshed token: %w", err)
	}

	m.logger.Info("token refreshed", "user_id", userID, "expires_at", updated.ExpiresAt, "pinned", stamp)
	return grant.AccessToken, nil
}

// identityFor returns the pinned override identity, or the user's current
// default credentials when nothing is pinned yet (stamp is then true).
func (m *TokenManager) identityFor(ctx context.Context, row *domain.ProviderToken) (domain.ClientIdentity, bool, error) {
	if row.HasOverride() {
		id, _, err := m.codec.DecryptIfEncrypted(row.OverrideClientID)
		if err != nil {
			return domain.ClientIdentity{}, false, fmt.Errorf("decrypt override client id: %w", err)
		}
		secret, _, err := m.codec.DecryptIfEncrypted(row.OverrideClientSecret)
		if err != nil {
			return domain.ClientIdentity{}, false, fmt.Errorf("decrypt override client secret: %w", err)
		}
		return domain.ClientIdentity{ClientID: id, ClientSecret: secret}, false, nil
	}

	creds, err := m.credentials.Resolve(ctx, row.UserID)
	if err != nil {
		return domain.ClientIdentity{}, false, err
	}
	return domain.ClientIdentity{ClientID: creds.ClientID, ClientSecret: creds.ClientSecret}, true, nil
}
