package driven

import "github.com/custodia-labs/stride-sync/internal/core/domain"

// ActivityNormaliser maps raw provider records into Activity rows.
type ActivityNormaliser interface {
	// NormalizePage maps every record of one page. profile may be nil.
	// Records without a provider id are dropped.
	NormalizePage(userID string, raws []domain.RawActivity, profile *domain.UserProfile) []*domain.Activity
}
