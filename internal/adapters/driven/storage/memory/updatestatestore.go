package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/core/ports/driven"
)

// Ensure UpdateStateStore implements the interface.
var _ driven.UpdateStateStore = (*UpdateStateStore)(nil)

// UpdateStateStore is an in-memory implementation of driven.UpdateStateStore.
type UpdateStateStore struct {
	mu      sync.RWMutex
	updated map[string]time.Time
}

// NewUpdateStateStore creates a new in-memory update state store.
func NewUpdateStateStore() *UpdateStateStore {
	return &UpdateStateStore{
		updated: make(map[string]time.Time),
	}
}

// GetLastUpdated returns when scope was last refreshed.
func (s *UpdateStateStore) GetLastUpdated(_ context.Context, scope string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	at, ok := s.updated[scope]
	if !ok {
		return domain.NeverUpdated, nil
	}
	return at, nil
}

// SetLastUpdated records when scope was last refreshed.
// It fails with the context error once ctx is done.
func (s *UpdateStateStore) SetLastUpdated(ctx context.Context, scope string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	s.updated[scope] = at
	return nil
}

// List returns all records ordered by scope.
func (s *UpdateStateStore) List(_ context.Context) ([]domain.UpdateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]domain.UpdateRecord, 0, len(s.updated))
	for scope, at := range s.updated {
		records = append(records, domain.UpdateRecord{Scope: scope, LastUpdated: at})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Scope < records[j].Scope })
	return records, nil
}

// Clear removes all records.
func (s *UpdateStateStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = make(map[string]time.Time)
	return nil
}
