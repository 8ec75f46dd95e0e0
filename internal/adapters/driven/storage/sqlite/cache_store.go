package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/core/ports/driven"
)

// cacheStore implements driven.CacheStore.
type cacheStore struct {
	store *Store
}

var _ driven.CacheStore = (*cacheStore)(nil)

// ReplacePullRequests replaces the cached pull requests of repo.
func (s *cacheStore) ReplacePullRequests(ctx context.Context, repo string, prs []domain.PullRequest) error {
	return s.replace(ctx, "pull requests", "DELETE FROM pull_requests WHERE repo = ?", repo,
		func(tx *sql.Tx) error {
			stmt, err := tx.PrepareContext(ctx, `
				INSERT OR REPLACE INTO pull_requests
					(repo, number, title, state, draft, author, head_branch, base_branch, url, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`)
			if err != nil {
				return err
			}
			defer stmt.Close()

			for _, pr := range prs {
				if _, err := stmt.ExecContext(ctx, repo, pr.Number, pr.Title, pr.State,
					boolToInt(pr.Draft), nullString(pr.Author), nullString(pr.HeadBranch),
					nullString(pr.BaseBranch), nullString(pr.URL), formatNullableTime(pr.UpdatedAt)); err != nil {
					return err
				}
			}
			return nil
		})
}

// ListPullRequests returns the cached pull requests of repo, most recently updated first.
func (s *cacheStore) ListPullRequests(ctx context.Context, repo string) ([]domain.PullRequest, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT repo, number, title, state, draft, author, head_branch, base_branch, url, updated_at
		FROM pull_requests WHERE repo = ?
		ORDER BY updated_at DESC, number DESC
	`, repo)
	if err != nil {
		return nil, fmt.Errorf("querying pull requests: %w", err)
	}
	defer rows.Close()

	var prs []domain.PullRequest //nolint:prealloc // size unknown from query
	for rows.Next() {
		var pr domain.PullRequest
		var draft int
		var author, head, base, url, updatedAt sql.NullString
		if err := rows.Scan(&pr.Repo, &pr.Number, &pr.Title, &pr.State, &draft,
			&author, &head, &base, &url, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning pull request: %w", err)
		}
		pr.Draft = draft == 1
		pr.Author = author.String
		pr.HeadBranch = head.String
		pr.BaseBranch = base.String
		pr.URL = url.String
		pr.UpdatedAt = parseNullableTime(updatedAt)
		prs = append(prs, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pull requests: %w", err)
	}
	return prs, nil
}

// ReplaceWorkItems replaces the cached results of a saved search.
func (s *cacheStore) ReplaceWorkItems(ctx context.Context, searchID string, items []domain.WorkItem) error {
	return s.replace(ctx, "work items", "DELETE FROM work_items WHERE search_id = ?", searchID,
		func(tx *sql.Tx) error {
			stmt, err := tx.PrepareContext(ctx, `
				INSERT OR REPLACE INTO work_items
					(search_id, repo, number, title, state, is_pull_request, url, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`)
			if err != nil {
				return err
			}
			defer stmt.Close()

			for _, item := range items {
				if _, err := stmt.ExecContext(ctx, searchID, item.Repo, item.Number, item.Title,
					item.State, boolToInt(item.IsPullRequest), nullString(item.URL),
					formatNullableTime(item.UpdatedAt)); err != nil {
					return err
				}
			}
			return nil
		})
}

// ListWorkItems returns the cached results of a saved search, most recently updated first.
func (s *cacheStore) ListWorkItems(ctx context.Context, searchID string) ([]domain.WorkItem, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT search_id, repo, number, title, state, is_pull_request, url, updated_at
		FROM work_items WHERE search_id = ?
		ORDER BY updated_at DESC, repo, number
	`, searchID)
	if err != nil {
		return nil, fmt.Errorf("querying work items: %w", err)
	}
	defer rows.Close()

	var items []domain.WorkItem //nolint:prealloc // size unknown from query
	for rows.Next() {
		var item domain.WorkItem
		var isPR int
		var url, updatedAt sql.NullString
		if err := rows.Scan(&item.SearchID, &item.Repo, &item.Number, &item.Title,
			&item.State, &isPR, &url, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning work item: %w", err)
		}
		item.IsPullRequest = isPR == 1
		item.URL = url.String
		item.UpdatedAt = parseNullableTime(updatedAt)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating work items: %w", err)
	}
	return items, nil
}

// ReplacePipelineRuns replaces the cached workflow runs of repo.
func (s *cacheStore) ReplacePipelineRuns(ctx context.Context, repo string, runs []domain.PipelineRun) error {
	return s.replace(ctx, "pipeline runs", "DELETE FROM pipeline_runs WHERE repo = ?", repo,
		func(tx *sql.Tx) error {
			stmt, err := tx.PrepareContext(ctx, `
				INSERT OR REPLACE INTO pipeline_runs
					(repo, id, name, run_number, branch, status, conclusion, url, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`)
			if err != nil {
				return err
			}
			defer stmt.Close()

			for _, run := range runs {
				if _, err := stmt.ExecContext(ctx, repo, run.ID, nullString(run.Name), run.RunNumber,
					nullString(run.Branch), nullString(run.Status), nullString(run.Conclusion),
					nullString(run.URL), formatNullableTime(run.UpdatedAt)); err != nil {
					return err
				}
			}
			return nil
		})
}

// ListPipelineRuns returns the cached workflow runs of repo, newest run first.
func (s *cacheStore) ListPipelineRuns(ctx context.Context, repo string) ([]domain.PipelineRun, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT repo, id, name, run_number, branch, status, conclusion, url, updated_at
		FROM pipeline_runs WHERE repo = ?
		ORDER BY run_number DESC, id DESC
	`, repo)
	if err != nil {
		return nil, fmt.Errorf("querying pipeline runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.PipelineRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		var run domain.PipelineRun
		var name, branch, status, conclusion, url, updatedAt sql.NullString
		if err := rows.Scan(&run.Repo, &run.ID, &name, &run.RunNumber, &branch,
			&status, &conclusion, &url, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning pipeline run: %w", err)
		}
		run.Name = name.String
		run.Branch = branch.String
		run.Status = status.String
		run.Conclusion = conclusion.String
		run.URL = url.String
		run.UpdatedAt = parseNullableTime(updatedAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pipeline runs: %w", err)
	}
	return runs, nil
}

// Clear removes all cached data. Saved searches are kept.
func (s *cacheStore) Clear(ctx context.Context) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"pull_requests", "work_items", "pipeline_runs"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing clear: %w", err)
	}
	return nil
}

// replace deletes the rows of one scope and inserts the new set in a single
// transaction, so readers never see a partial result.
func (s *cacheStore) replace(
	ctx context.Context, what, deleteSQL, key string, insert func(*sql.Tx) error,
) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, deleteSQL, key); err != nil {
		return fmt.Errorf("deleting %s: %w", what, err)
	}
	if err := insert(tx); err != nil {
		return fmt.Errorf("saving %s: %w", what, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", what, err)
	}
	return nil
}
