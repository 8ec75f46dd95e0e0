package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/core/ports/driven"
)

// savedSearchStore implements driven.SavedSearchStore.
type savedSearchStore struct {
	store *Store
}

var _ driven.SavedSearchStore = (*savedSearchStore)(nil)

// Save stores or updates a saved search.
func (s *savedSearchStore) Save(ctx context.Context, search domain.SavedSearch) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO saved_searches (id, name, query, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			query = excluded.query
	`, search.ID, search.Name, search.Query, formatNullableTime(search.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving saved search: %w", err)
	}
	return nil
}

// Get retrieves a saved search by ID.
func (s *savedSearchStore) Get(ctx context.Context, id string) (*domain.SavedSearch, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT id, name, query, created_at FROM saved_searches WHERE id = ?", id)

	search, err := scanSavedSearch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return search, nil
}

// List returns all saved searches ordered by name.
func (s *savedSearchStore) List(ctx context.Context) ([]domain.SavedSearch, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id, name, query, created_at FROM saved_searches ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("querying saved searches: %w", err)
	}
	defer rows.Close()

	var searches []domain.SavedSearch //nolint:prealloc // size unknown from query
	for rows.Next() {
		search, err := scanSavedSearch(rows)
		if err != nil {
			return nil, err
		}
		searches = append(searches, *search)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating saved searches: %w", err)
	}
	return searches, nil
}

// Delete removes a saved search and its cached results.
func (s *savedSearchStore) Delete(ctx context.Context, id string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM work_items WHERE search_id = ?", id); err != nil {
		return fmt.Errorf("deleting work items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM saved_searches WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting saved search: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSavedSearch(row rowScanner) (*domain.SavedSearch, error) {
	var search domain.SavedSearch
	var createdAt sql.NullString
	if err := row.Scan(&search.ID, &search.Name, &search.Query, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning saved search: %w", err)
	}
	search.CreatedAt = parseNullableTime(createdAt)
	return &search, nil
}
