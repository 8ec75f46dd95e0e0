package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/core/ports/driven"
)

// Ensure SavedSearchStore implements the interface.
var _ driven.SavedSearchStore = (*SavedSearchStore)(nil)

// SavedSearchStore is an in-memory implementation of driven.SavedSearchStore.
type SavedSearchStore struct {
	mu       sync.RWMutex
	searches map[string]domain.SavedSearch
}

// NewSavedSearchStore creates a new in-memory saved search store.
func NewSavedSearchStore() *SavedSearchStore {
	return &SavedSearchStore{
		searches: make(map[string]domain.SavedSearch),
	}
}

// Save stores or updates a saved search.
func (s *SavedSearchStore) Save(_ context.Context, search domain.SavedSearch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches[search.ID] = search
	return nil
}

// Get retrieves a saved search by ID.
func (s *SavedSearchStore) Get(_ context.Context, id string) (*domain.SavedSearch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	search, ok := s.searches[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &search, nil
}

// List returns all saved searches ordered by name.
func (s *SavedSearchStore) List(_ context.Context) ([]domain.SavedSearch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.SavedSearch, 0, len(s.searches))
	for _, search := range s.searches {
		result = append(result, search)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].ID < result[j].ID
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Delete removes a saved search.
func (s *SavedSearchStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.searches, id)
	return nil
}
