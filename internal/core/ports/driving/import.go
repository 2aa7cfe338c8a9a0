package driving

import (
	"context"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

// ImportService pulls a user's full activity history from the provider.
type ImportService interface {
	// ImportAll runs one synchronous import and returns its counters.
	ImportAll(ctx context.Context, userID string) (*domain.ImportResult, error)
}
