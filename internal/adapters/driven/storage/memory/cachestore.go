package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// CacheStore is an in-memory implementation of driven.CacheStore.
// Slices are copied on the way in and out so callers never share backing arrays.
// Writes fail with the context error once ctx is done, as database writes do.
type CacheStore struct {
	mu    sync.RWMutex
	pulls map[string][]domain.PullRequest
	items map[string][]domain.WorkItem
	runs  map[string][]domain.PipelineRun
}

// NewCacheStore creates a new in-memory cache store.
func NewCacheStore() *CacheStore {
	return &CacheStore{
		pulls: make(map[string][]domain.PullRequest),
		items: make(map[string][]domain.WorkItem),
		runs:  make(map[string][]domain.PipelineRun),
	}
}

// ReplacePullRequests replaces the cached pull requests of repo.
func (s *CacheStore) ReplacePullRequests(ctx context.Context, repo string, prs []domain.PullRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	s.pulls[repo] = clone(prs)
	return nil
}

// ListPullRequests returns the cached pull requests of repo.
func (s *CacheStore) ListPullRequests(_ context.Context, repo string) ([]domain.PullRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.pulls[repo]), nil
}

// ReplaceWorkItems replaces the cached results of a saved search.
func (s *CacheStore) ReplaceWorkItems(ctx context.Context, searchID string, items []domain.WorkItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	s.items[searchID] = clone(items)
	return nil
}

// ListWorkItems returns the cached results of a saved search.
func (s *CacheStore) ListWorkItems(_ context.Context, searchID string) ([]domain.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.items[searchID]), nil
}

// ReplacePipelineRuns replaces the cached workflow runs of repo.
func (s *CacheStore) ReplacePipelineRuns(ctx context.Context, repo string, runs []domain.PipelineRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	s.runs[repo] = clone(runs)
	return nil
}

// ListPipelineRuns returns the cached workflow runs of repo.
func (s *CacheStore) ListPipelineRuns(_ context.Context, repo string) ([]domain.PipelineRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.runs[repo]), nil
}

// Clear removes all cached data.
func (s *CacheStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pulls = make(map[string][]domain.PullRequest)
	s.items = make(map[string][]domain.WorkItem)
	s.runs = make(map[string][]domain.PipelineRun)
	return nil
}

func clone[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
