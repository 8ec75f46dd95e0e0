package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/core/ports/driven"
)

// updateStateStore implements driven.UpdateStateStore.
type updateStateStore struct {
	store *Store
}

var _ driven.UpdateStateStore = (*updateStateStore)(nil)

// GetLastUpdated returns when scope was last refreshed.
// Returns domain.NeverUpdated and no error if it never was.
func (s *updateStateStore) GetLastUpdated(ctx context.Context, scope string) (time.Time, error) {
	var lastUpdated sql.NullString
	err := s.store.db.QueryRowContext(ctx,
		"SELECT last_updated FROM update_state WHERE scope = ?", scope).Scan(&lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NeverUpdated, nil
	}
	if err != nil {
		return domain.NeverUpdated, fmt.Errorf("querying update state: %w", err)
	}
	return parseNullableTime(lastUpdated), nil
}

// SetLastUpdated records when scope was last refreshed.
func (s *updateStateStore) SetLastUpdated(ctx context.Context, scope string, at time.Time) error {
	if at.IsZero() {
		_, err := s.store.db.ExecContext(ctx, "DELETE FROM update_state WHERE scope = ?", scope)
		if err != nil {
			return fmt.Errorf("resetting update state: %w", err)
		}
		return nil
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO update_state (scope, last_updated) VALUES (?, ?)
		ON CONFLICT(scope) DO UPDATE SET last_updated = excluded.last_updated
	`, scope, formatNullableTime(at))
	if err != nil {
		return fmt.Errorf("saving update state: %w", err)
	}
	return nil
}

// List returns all records ordered by scope.
func (s *updateStateStore) List(ctx context.Context) ([]domain.UpdateRecord, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT scope, last_updated FROM update_state ORDER BY scope")
	if err != nil {
		return nil, fmt.Errorf("querying update state: %w", err)
	}
	defer rows.Close()

	var records []domain.UpdateRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var record domain.UpdateRecord
		var lastUpdated sql.NullString
		if err := rows.Scan(&record.Scope, &lastUpdated); err != nil {
			return nil, fmt.Errorf("scanning update state: %w", err)
		}
		record.LastUpdated = parseNullableTime(lastUpdated)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating update state: %w", err)
	}
	return records, nil
}

// Clear removes all records.
func (s *updateStateStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM update_state"); err != nil {
		return fmt.Errorf("clearing update state: %w", err)
	}
	return nil
}
