package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driven"
)

var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore implements driven.TokenStore using PostgreSQL.
type TokenStore struct {
	db *DB
}

// NewTokenStore creates a PostgreSQL-backed token store.
func NewTokenStore(db *DB) *TokenStore {
	return &TokenStore{db: db}
}

// Get returns the token row for userID or domain.ErrNotFound.
func (s *TokenStore) Get(ctx context.Context, userID string) (*domain.ProviderToken, error) {
	query := `
		SELECT user_id, access_token, refresh_token, expires_at,
		       override_client_id, override_client_secret, created_at, updated_at
		FROM provider_tokens
		WHERE user_id = $1
	`

	var tok domain.ProviderToken
	var overrideID, overrideSecret sql.NullString
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&tok.UserID, &tok.AccessToken, &tok.RefreshToken, &tok.ExpiresAt,
		&overrideID, &overrideSecret, &tok.CreatedAt, &tok.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get provider token: %w", err)
	}

	tok.OverrideClientID = overrideID.String
	tok.OverrideClientSecret = overrideSecret.String
	return &tok, nil
}

// Save upserts the full row. created_at survives an update.
func (s *TokenStore) Save(ctx context.Context, tok *domain.ProviderToken) error {
	query := `
		INSERT INTO provider_tokens (
			user_id, access_token, refresh_token, expires_at,
			override_client_id, override_client_secret, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			override_client_id = EXCLUDED.override_client_id,
			override_client_secret = EXCLUDED.override_client_secret,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	if tok.CreatedAt.IsZero() {
		tok.CreatedAt = now
	}
	tok.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, query,
		tok.UserID,
		tok.AccessToken,
		tok.RefreshToken,
		tok.ExpiresAt,
		nullIfEmpty(tok.OverrideClientID),
		nullIfEmpty(tok.OverrideClientSecret),
		tok.CreatedAt,
		tok.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save provider token: %w", err)
	}
	return nil
}

// UpdateSecrets rewrites the two secret columns and nothing else but updated_at.
func (s *TokenStore) UpdateSecrets(ctx context.Context, userID, accessToken, refreshToken string) error {
	query := `
		UPDATE provider_tokens
		SET access_token = $2, refresh_token = $3, updated_at = NOW()
		WHERE user_id = $1
	`

	res, err := s.db.ExecContext(ctx, query, userID, accessToken, refreshToken)
	if err != nil {
		return fmt.Errorf("update token secrets: %w", err)
	}
	return requireRow(res)
}

// Delete removes the row for userID.
func (s *TokenStore) Delete(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM provider_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete provider token: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
