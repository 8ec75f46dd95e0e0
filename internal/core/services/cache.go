package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/core/ports/driven"
	"github.com/custodia-labs/prcache/internal/core/ports/driving"
)

// Ensure services implement the interfaces.
var (
	_ driving.CacheService       = (*CacheService)(nil)
	_ driving.SavedSearchService = (*SavedSearchService)(nil)
)

// CacheService reads cached GitHub data.
type CacheService struct {
	cache   driven.CacheStore
	updates driven.UpdateStateStore
}

// NewCacheService creates a new cache service.
func NewCacheService(cache driven.CacheStore, updates driven.UpdateStateStore) *CacheService {
	return &CacheService{cache: cache, updates: updates}
}

// PullRequests returns the cached pull requests of repo.
func (s *CacheService) PullRequests(ctx context.Context, repo string) ([]domain.PullRequest, error) {
	if _, _, err := domain.SplitRepo(repo); err != nil {
		return nil, err
	}
	return s.cache.ListPullRequests(ctx, repo)
}

// WorkItems returns the cached results of a saved search.
func (s *CacheService) WorkItems(ctx context.Context, searchID string) ([]domain.WorkItem, error) {
	if searchID == "" {
		return nil, fmt.Errorf("%w: search ID is required", domain.ErrInvalidInput)
	}
	return s.cache.ListWorkItems(ctx, searchID)
}

// PipelineRuns returns the cached workflow runs of repo.
func (s *CacheService) PipelineRuns(ctx context.Context, repo string) ([]domain.PipelineRun, error) {
	if _, _, err := domain.SplitRepo(repo); err != nil {
		return nil, err
	}
	return s.cache.ListPipelineRuns(ctx, repo)
}

// UpdateRecords returns LastUpdated for every refreshed scope.
func (s *CacheService) UpdateRecords(ctx context.Context) ([]domain.UpdateRecord, error) {
	return s.updates.List(ctx)
}

// SavedSearchService manages saved work-item searches.
type SavedSearchService struct {
	store driven.SavedSearchStore
	now   func() time.Time
}

// NewSavedSearchService creates a new saved search service.
func NewSavedSearchService(store driven.SavedSearchStore) *SavedSearchService {
	return &SavedSearchService{store: store, now: time.Now}
}

// Add saves a new search with a generated ID.
func (s *SavedSearchService) Add(ctx context.Context, name, query string) (*domain.SavedSearch, error) {
	search := domain.SavedSearch{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Query:     strings.TrimSpace(query),
		CreatedAt: s.now(),
	}
	if err := search.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if strings.EqualFold(e.Name, search.Name) {
			return nil, fmt.Errorf("%w: saved search %q", domain.ErrAlreadyExists, search.Name)
		}
	}

	if err := s.store.Save(ctx, search); err != nil {
		return nil, err
	}
	return &search, nil
}

// Get retrieves a saved search by ID.
func (s *SavedSearchService) Get(ctx context.Context, id string) (*domain.SavedSearch, error) {
	return s.store.Get(ctx, id)
}

// List returns all saved searches ordered by name.
func (s *SavedSearchService) List(ctx context.Context) ([]domain.SavedSearch, error) {
	return s.store.List(ctx)
}

// Remove deletes a saved search. Returns domain.ErrNotFound if it does not exist.
func (s *SavedSearchService) Remove(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}
