package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driven"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driving"
	"github.com/custodia-labs/stride-sync/internal/observability"
)

// Verify interface compliance
var _ driving.ImportService = (*ImportOrchestrator)(nil)

// ImportOrchestrator pulls a user's full activity history page by page.
// The flow is:
//  1. Obtain a valid access token and the user profile
//  2. Fetch page N (refresh once and retry on a 401)
//  3. Stop on an empty page
//  4. Normalise and upsert the page as one batch
//  5. Advance to page N+1
type ImportOrchestrator struct {
	tokens     *TokenManager
	fetcher    driven.ActivityFetcher
	activities driven.ActivityStore
	profiles   driven.ProfileStore
	normaliser driven.ActivityNormaliser
	logger     *slog.Logger
}

// ImportOrchestratorConfig holds dependencies for ImportOrchestrator.
type ImportOrchestratorConfig struct {
	Tokens        *TokenManager
	Fetcher       driven.ActivityFetcher
	ActivityStore driven.ActivityStore
	ProfileStore  driven.ProfileStore
	Normaliser    driven.ActivityNormaliser
	Logger        *slog.Logger
}

// NewImportOrchestrator creates a new import orchestrator.
func NewImportOrchestrator(cfg ImportOrchestratorConfig) *ImportOrchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ImportOrchestrator{
		tokens:     cfg.Tokens,
		fetcher:    cfg.Fetcher,
		activities: cfg.ActivityStore,
		profiles:   cfg.ProfileStore,
		normaliser: cfg.Normaliser,
		logger:     logger,
	}
}

// ImportAll imports every page for userID. Pages committed before a
// failure are kept, so calling it again is safe.
func (o *ImportOrchestrator) ImportAll(ctx context.Context, userID string) (*domain.ImportResult, error) {
	start := time.Now()
	result, err := o.run(ctx, userID)
	observability.RecordImportRun(err, time.Since(start))

	if err != nil {
		o.logger.Error("import failed",
			"user_id", userID,
			"pages", result.Pages,
			"imported", result.Imported,
			"error", err,
		)
		return result, err
	}

	o.logger.Info("import completed",
		"user_id", userID,
		"pages", result.Pages,
		"imported", result.Imported,
		"duration", time.Since(start),
	)
	return result, nil
}

func (o *ImportOrchestrator) run(ctx context.Context, userID string) (*domain.ImportResult, error) {
	result := &domain.ImportResult{}

	o.logger.Info("starting import", "user_id", userID)

	accessToken, err := o.tokens.GetValidAccessToken(ctx, userID)
	if err != nil {
		return result, err
	}

	profile, err := o.profiles.Get(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return result, fmt.Errorf("load profile: %w", err)
	}

	refreshed := false
	for page := 1; ; page++ {
		// Cancellation is honoured between pages only.
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fetched, written, err := o.importPage(ctx, userID, page, profile, &accessToken, &refreshed)
		if err != nil {
			return result, err
		}
		if fetched == 0 {
			return result, nil
		}

		result.Pages++
		result.Imported += written
	}
}

// importPage runs one fetch-and-commit cycle. It returns the number of
// records the provider sent, where zero means there are no more pages, and
// the number of rows actually written.
func (o *ImportOrchestrator) importPage(
	ctx context.Context,
	userID string,
	page int,
	profile *domain.UserProfile,
	accessToken *string,
	refreshed *bool,
) (fetched, written int, err error) {
	cycle := context.WithoutCancel(ctx)

	raws, err := o.fetcher.FetchPage(cycle, *accessToken, page)
	if err != nil && domain.IsUnauthorized(err) && !*refreshed {
		*refreshed = true
		o.logger.Warn("provider rejected access token, refreshing", "user_id", userID, "page", page)

		token, refreshErr := o.tokens.ForceRefresh(cycle, userID)
		if refreshErr != nil {
			return 0, 0, fmt.Errorf("refresh after unauthorized on page %d: %w", page, refreshErr)
		}
		*accessToken = token

		raws, err = o.fetcher.FetchPage(cycle, *accessToken, page)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("fetch page %d: %w", page, err)
	}

	if len(raws) == 0 {
		return 0, 0, nil
	}

	activities := o.normaliser.NormalizePage(userID, raws, profile)
	written, err = o.activities.UpsertBatch(cycle, activities)
	if err != nil {
		return 0, 0, fmt.Errorf("commit page %d: %w", page, err)
	}
	if skipped := len(activities) - written; skipped > 0 {
		o.logger.Warn("activities owned by another user were not updated",
			"user_id", userID, "page", page, "skipped", skipped)
	}

	observability.RecordImportPage(written)
	o.logger.Debug("page committed", "user_id", userID, "page", page, "records", written)
	return len(raws), written, nil
}
