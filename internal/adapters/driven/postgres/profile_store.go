package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driven"
)

var _ driven.ProfileStore = (*ProfileStore)(nil)

// ProfileStore reads user_profiles. Writes belong to the profile feature.
type ProfileStore struct {
	db *DB
}

// NewProfileStore creates a PostgreSQL-backed profile reader.
func NewProfileStore(db *DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Get returns the profile for userID or domain.ErrNotFound.
func (s *ProfileStore) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	query := `
		SELECT user_id, heart_rate_max, weight_kg, age, height_cm
		FROM user_profiles
		WHERE user_id = $1
	`

	p := domain.UserProfile{}
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.HeartRateMax, &p.WeightKg, &p.Age, &p.HeightCm,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	return &p, nil
}
