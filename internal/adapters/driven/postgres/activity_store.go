package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driven"
)

var _ driven.ActivityStore = (*ActivityStore)(nil)

// activityColumns is the column order shared by insert and select.
var activityColumns = []string{
	"id", "user_id", "external_activity_id", "name", "type", "sport_type", "category",
	"start_date", "start_date_local", "timezone",
	"distance_meters", "moving_time_seconds", "elapsed_time_seconds",
	"elevation_gain", "elevation_high", "elevation_low", "average_speed", "max_speed",
	"average_heart_rate", "max_heart_rate", "has_heart_rate",
	"average_watts", "max_watts", "weighted_average_watts", "kilojoules", "device_watts",
	"average_cadence", "suffer_score", "calories", "estimated_calories",
	"stride_length", "ground_contact_time", "vertical_oscillation",
	"trainer", "commute", "manual", "private",
	"created_at", "updated_at",
}

// Conflicts on external_activity_id keep id, user_id and created_at.
// The WHERE clause turns an update of another user's row into a no-op.
var (
	upsertActivitySQL = buildUpsertActivitySQL()
	selectActivitySQL = "SELECT " + strings.Join(activityColumns, ", ") +
		" FROM activities WHERE external_activity_id = $1"
)

func buildUpsertActivitySQL() string {
	placeholders := make([]string, len(activityColumns))
	for i := range activityColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	var sets []string
	for _, col := range activityColumns {
		switch col {
		case "id", "user_id", "external_activity_id", "created_at":
			continue
		}
		sets = append(sets, col+" = EXCLUDED."+col)
	}

	var b strings.Builder
	b.WriteString("INSERT INTO activities (")
	b.WriteString(strings.Join(activityColumns, ", "))
	b.WriteString(") VALUES (")
	b.WriteString(strings.Join(placeholders, ", "))
	b.WriteString(") ON CONFLICT (external_activity_id) DO UPDATE SET ")
	b.WriteString(strings.Join(sets, ", "))
	b.WriteString(" WHERE activities.user_id = EXCLUDED.user_id")
	return b.String()
}

// ActivityStore implements driven.ActivityStore using PostgreSQL.
type ActivityStore struct {
	db *DB
}

// NewActivityStore creates a PostgreSQL-backed activity store.
func NewActivityStore(db *DB) *ActivityStore {
	return &ActivityStore{db: db}
}

// UpsertBatch writes the batch in one transaction and returns how many rows
// were inserted or updated. Rows skipped by the ownership guard report zero
// rows affected.
func (s *ActivityStore) UpsertBatch(ctx context.Context, activities []*domain.Activity) (int, error) {
	if len(activities) == 0 {
		return 0, nil
	}

	written := 0
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertActivitySQL)
		if err != nil {
			return fmt.Errorf("prepare activity upsert: %w", err)
		}
		defer stmt.Close()

		now := time.Now()
		for _, a := range activities {
			if a.CreatedAt.IsZero() {
				a.CreatedAt = now
			}
			a.UpdatedAt = now
			res, err := stmt.ExecContext(ctx, activityArgs(a)...)
			if err != nil {
				return fmt.Errorf("upsert activity %s: %w", a.ExternalActivityID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("upsert activity %s: %w", a.ExternalActivityID, err)
			}
			written += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// GetByExternalID returns the activity or domain.ErrNotFound.
func (s *ActivityStore) GetByExternalID(ctx context.Context, externalID string) (*domain.Activity, error) {
	var a domain.Activity
	var category string
	err := s.db.QueryRowContext(ctx, selectActivitySQL, externalID).Scan(
		&a.ID, &a.UserID, &a.ExternalActivityID, &a.Name, &a.Type, &a.SportType, &category,
		&a.StartDate, &a.StartDateLocal, &a.Timezone,
		&a.DistanceMeters, &a.MovingTimeSeconds, &a.ElapsedTimeSeconds,
		&a.ElevationGain, &a.ElevationHigh, &a.ElevationLow, &a.AverageSpeed, &a.MaxSpeed,
		&a.AverageHeartRate, &a.MaxHeartRate, &a.HasHeartRate,
		&a.AverageWatts, &a.MaxWatts, &a.WeightedAverageWatts, &a.Kilojoules, &a.DeviceWatts,
		&a.AverageCadence, &a.SufferScore, &a.Calories, &a.EstimatedCalories,
		&a.StrideLength, &a.GroundContactTime, &a.VerticalOscillation,
		&a.Trainer, &a.Commute, &a.Manual, &a.Private,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	a.Category = domain.ActivityType(category)
	return &a, nil
}

// CountByUser returns how many activities userID owns.
func (s *ActivityStore) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return n, nil
}

func activityArgs(a *domain.Activity) []any {
	return []any{
		a.ID, a.UserID, a.ExternalActivityID, a.Name, a.Type, a.SportType, string(a.Category),
		a.StartDate, a.StartDateLocal, a.Timezone,
		a.DistanceMeters, a.MovingTimeSeconds, a.ElapsedTimeSeconds,
		a.ElevationGain, a.ElevationHigh, a.ElevationLow, a.AverageSpeed, a.MaxSpeed,
		a.AverageHeartRate, a.MaxHeartRate, a.HasHeartRate,
		a.AverageWatts, a.MaxWatts, a.WeightedAverageWatts, a.Kilojoules, a.DeviceWatts,
		a.AverageCadence, a.SufferScore, a.Calories, a.EstimatedCalories,
		a.StrideLength, a.GroundContactTime, a.VerticalOscillation,
		a.Trainer, a.Commute, a.Manual, a.Private,
		a.CreatedAt, a.UpdatedAt,
	}
}
