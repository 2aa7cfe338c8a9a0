package driven

import (
	"context"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

// ActivityStore persists normalized activities.
type ActivityStore interface {
	// UpsertBatch inserts or updates every activity keyed by ExternalActivityID.
	// The batch is atomic: either all rows are written or none are.
	// A row owned by a different user is never overwritten and is not counted
	// in written.
	UpsertBatch(ctx context.Context, activities []*domain.Activity) (written int, err error)

	// GetByExternalID returns one activity or domain.ErrNotFound.
	GetByExternalID(ctx context.Context, externalID string) (*domain.Activity, error)

	// CountByUser returns the number of activities owned by userID.
	CountByUser(ctx context.Context, userID string) (int, error)
}
