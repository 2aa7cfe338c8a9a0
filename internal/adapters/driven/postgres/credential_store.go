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

var _ driven.CredentialStore = (*CredentialStore)(nil)

// CredentialStore implements driven.CredentialStore using PostgreSQL.
// Values arrive encrypted and are written as-is.
type CredentialStore struct {
	db *DB
}

// NewCredentialStore creates a PostgreSQL-backed credential store.
func NewCredentialStore(db *DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// Get returns the row for userID or domain.ErrNotFound.
func (s *CredentialStore) Get(ctx context.Context, userID string) (*domain.StoredCredentials, error) {
	query := `
		SELECT user_id, client_id, client_secret, redirect_uri, updated_at
		FROM provider_credentials
		WHERE user_id = $1
	`

	var creds domain.StoredCredentials
	var clientID, clientSecret, redirectURI sql.NullString
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&creds.UserID, &clientID, &clientSecret, &redirectURI, &creds.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get provider credentials: %w", err)
	}

	creds.ClientID = clientID.String
	creds.ClientSecret = clientSecret.String
	creds.RedirectURI = redirectURI.String
	return &creds, nil
}

// Save upserts the row for creds.UserID.
func (s *CredentialStore) Save(ctx context.Context, creds *domain.StoredCredentials) error {
	query := `
		INSERT INTO provider_credentials (user_id, client_id, client_secret, redirect_uri, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			client_secret = EXCLUDED.client_secret,
			redirect_uri = EXCLUDED.redirect_uri,
			updated_at = EXCLUDED.updated_at
	`

	if creds.UpdatedAt.IsZero() {
		creds.UpdatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		creds.UserID,
		nullIfEmpty(creds.ClientID),
		nullIfEmpty(creds.ClientSecret),
		nullIfEmpty(creds.RedirectURI),
		creds.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save provider credentials: %w", err)
	}
	return nil
}
