package driving

import (
	"context"

	"github.com/custodia-labs/prcache/internal/core/domain"
)

// CacheService reads cached data.
type CacheService interface {
	// PullRequests returns the cached pull requests of "owner/repo".
	PullRequests(ctx context.Context, repo string) ([]domain.PullRequest, error)

	// WorkItems returns the cached results of a saved search.
	WorkItems(ctx context.Context, searchID string) ([]domain.WorkItem, error)

	// PipelineRuns returns the cached workflow runs of "owner/repo".
	PipelineRuns(ctx context.Context, repo string) ([]domain.PipelineRun, error)

	// UpdateRecords returns LastUpdated for every refreshed scope.
	UpdateRecords(ctx context.Context) ([]domain.UpdateRecord, error)
}

// SavedSearchService manages saved work-item searches.
type SavedSearchService interface {
	// Add saves a new search and returns it with its generated ID.
	Add(ctx context.Context, name, query string) (*domain.SavedSearch, error)

	// Get retrieves a saved search by ID.
	Get(ctx context.Context, id string) (*domain.SavedSearch, error)

	// List returns all saved searches.
	List(ctx context.Context) ([]domain.SavedSearch, error)

	// Remove deletes a saved search.
	Remove(ctx context.Context, id string) error
}
