package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driven"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driving"
)

// Verify interface compliance
var _ driving.ConnectionService = (*ConnectionService)(nil)

// ConnectionService manages provider credentials and the OAuth handshake.
type ConnectionService struct {
	credentialStore driven.CredentialStore
	tokenStore      driven.TokenStore
	resolver        *CredentialResolver
	codec           driven.SecretCodec
	oauth           driven.OAuthHandler
	state           driven.OAuthStateSigner
	now             func() time.Time
	logger          *slog.Logger
}

// ConnectionServiceConfig holds dependencies for ConnectionService.
type ConnectionServiceConfig struct {
	CredentialStore driven.CredentialStore
	TokenStore      driven.TokenStore
	Codec           driven.SecretCodec
	OAuth           driven.OAuthHandler
	StateSigner     driven.OAuthStateSigner
	Now             func() time.Time
	Logger          *slog.Logger
}

// NewConnectionService creates a new ConnectionService.
func NewConnectionService(cfg ConnectionServiceConfig) *ConnectionService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &ConnectionService{
		credentialStore: cfg.CredentialStore,
		tokenStore:      cfg.TokenStore,
		resolver:        NewCredentialResolver(cfg.CredentialStore, cfg.Codec),
		codec:           cfg.Codec,
		oauth:           cfg.OAuth,
		state:           cfg.StateSigner,
		now:             now,
		logger:          logger,
	}
}

// SaveCredentials encrypts and stores the user's application identity.
// Existing tokens keep their pinned identity until the next authorization.
func (s *ConnectionService) SaveCredentials(ctx context.Context, userID string, creds domain.ProviderCredentials) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	creds.ClientID = strings.TrimSpace(creds.ClientID)
	creds.ClientSecret = strings.TrimSpace(creds.ClientSecret)
	creds.RedirectURI = strings.TrimSpace(creds.RedirectURI)
	if !creds.IsComplete() {
		return fmt.Errorf("%w: client_id, client_secret and redirect_uri are all required", domain.ErrInvalidInput)
	}

	stored := &domain.StoredCredentials{UserID: userID, UpdatedAt: s.now()}
	var err error
	if stored.ClientID, err = s.codec.Encrypt(creds.ClientID); err != nil {
		return fmt.Errorf("encrypt client id: %w", err)
	}
	if stored.ClientSecret, err = s.codec.Encrypt(creds.ClientSecret); err != nil {
		return fmt.Errorf("encrypt client secret: %w", err)
	}
	if stored.RedirectURI, err = s.codec.Encrypt(creds.RedirectURI); err != nil {
		return fmt.Errorf("encrypt redirect uri: %w", err)
	}

	if err := s.credentialStore.Save(ctx, stored); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	s.logger.Info("provider credentials saved", "user_id", userID)
	return nil
}

// CredentialStatus reports whether the user is configured and connected.
func (s *ConnectionService) CredentialStatus(ctx context.Context, userID string) (*domain.CredentialStatus, error) {
	status := &domain.CredentialStatus{}

	stored, err := s.credentialStore.Get(ctx, userID)
	switch {
	case err == nil:
		status.Configured = stored.IsComplete()
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	tok, err := s.tokenStore.Get(ctx, userID)
	switch {
	case err == nil:
		expiresAt := tok.ExpiresAt
		status.Connected = true
		status.ExpiresAt = &expiresAt
		status.Pinned = tok.HasOverride()
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("load token: %w", err)
	}

	return status, nil
}

// AuthorizeURL returns the provider URL the user must visit to connect.
func (s *ConnectionService) AuthorizeURL(ctx context.Context, userID string) (string, error) {
	creds, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return "", err
	}

	state, err := s.state.Sign(userID)
	if err != nil {
		return "", fmt.Errorf("sign state: %w", err)
	}

	return s.oauth.BuildAuthURL(*creds, state), nil
}

// CompleteAuthorization exchanges the callback code and stores a new token
// lineage for the user named in state. The new row carries no override.
func (s *ConnectionService) CompleteAuthorization(ctx context.Context, state, code string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("%w: code is required", domain.ErrInvalidInput)
	}

	userID, err := s.state.Verify(state)
	if err != nil {
		return "", err
	}

	creds, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return "", err
	}

	ctx = context.WithoutCancel(ctx)
	grant, err := s.oauth.ExchangeCode(ctx, *creds, code)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}

	now := s.now()
	tok := &domain.ProviderToken{
		UserID:    userID,
		ExpiresAt: grant.ExpiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if tok.AccessToken, err = s.codec.Encrypt(grant.AccessToken); err != nil {
		return "", fmt.Errorf("encrypt access token: %w", err)
	}
	if tok.RefreshToken, err = s.codec.Encrypt(grant.RefreshToken); err != nil {
		return "", fmt.Errorf("encrypt refresh token: %w", err)
	}

	if err := s.tokenStore.Save(ctx, tok); err != nil {
		return "", fmt.Errorf("save token: %w", err)
	}

	s.logger.Info("provider connected", "user_id", userID, "expires_at", grant.ExpiresAt)
	return userID, nil
}

// Disconnect removes the user's token row.
func (s *ConnectionService) Disconnect(ctx context.Context, userID string) error {
	if err := s.tokenStore.Delete(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotConnected
		}
		return fmt.Errorf("delete token: %w", err)
	}

	s.logger.Info("provider disconnected", "user_id", userID)
	return nil
}
