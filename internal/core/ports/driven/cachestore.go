package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/prcache/internal/core/domain"
)

// CacheStore persists fetched data.
// Each Replace call swaps the full result set of one scope atomically.
type CacheStore interface {
	// ReplacePullRequests replaces the cached pull requests of repo.
	ReplacePullRequests(ctx context.Context, repo string, prs []domain.PullRequest) error

	// ListPullRequests returns the cached pull requests of repo.
	ListPullRequests(ctx context.Context, repo string) ([]domain.PullRequest, error)

	// ReplaceWorkItems replaces the cached results of a saved search.
	ReplaceWorkItems(ctx context.Context, searchID string, items []domain.WorkItem) error

	// ListWorkItems returns the cached results of a saved search.
	ListWorkItems(ctx context.Context, searchID string) ([]domain.WorkItem, error)

	// ReplacePipelineRuns replaces the cached workflow runs of repo.
	ReplacePipelineRuns(ctx context.Context, repo string, runs []domain.PipelineRun) error

	// ListPipelineRuns returns the cached workflow runs of repo.
	ListPipelineRuns(ctx context.Context, repo string) ([]domain.PipelineRun, error)

	// Clear removes all cached data.
	Clear(ctx context.Context) error
}

// UpdateStateStore persists LastUpdated per scope.
type UpdateStateStore interface {
	// GetLastUpdated returns when scope was last refreshed.
	// Returns domain.NeverUpdated and no error if it never was.
	GetLastUpdated(ctx context.Context, scope string) (time.Time, error)

	// SetLastUpdated records when scope was last refreshed.
	SetLastUpdated(ctx context.Context, scope string, at time.Time) error

	// List returns all records ordered by scope.
	List(ctx context.Context) ([]domain.UpdateRecord, error)

	// Clear removes all records.
	Clear(ctx context.Context) error
}

// SavedSearchStore persists saved work-item searches.
type SavedSearchStore interface {
	// Save stores or updates a saved search.
	Save(ctx context.Context, search domain.SavedSearch) error

	// Get retrieves a saved search by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.SavedSearch, error)

	// List returns all saved searches ordered by name.
	List(ctx context.Context) ([]domain.SavedSearch, error)

	// Delete removes a saved search.
	Delete(ctx context.Context, id string) error
}
