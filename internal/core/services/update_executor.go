package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/core/ports/driven"
	"github.com/custodia-labs/prcache/internal/logger"
)

// Ensure FetchExecutor implements the interface.
var _ driven.UpdateExecutor = (*FetchExecutor)(nil)

// FetchExecutor fetches GitHub data into the cache.
//
// Sources may be nil; refreshing a kind without a source fails with
// domain.ErrSourceUnavailable.
type FetchExecutor struct {
	pulls     driven.PullRequestSource
	items     driven.WorkItemSource
	pipelines driven.PipelineSource
	searches  driven.SavedSearchStore
	cache     driven.CacheStore
	updates   driven.UpdateStateStore
	log       *logger.Logger

	now func() time.Time
}

// NewFetchExecutor creates a new fetch executor.
func NewFetchExecutor(
	pulls driven.PullRequestSource,
	items driven.WorkItemSource,
	pipelines driven.PipelineSource,
	searches driven.SavedSearchStore,
	cache driven.CacheStore,
	updates driven.UpdateStateStore,
	log *logger.Logger,
) *FetchExecutor {
	if log == nil {
		log = logger.Default()
	}
	return &FetchExecutor{
		pulls:     pulls,
		items:     items,
		pipelines: pipelines,
		searches:  searches,
		cache:     cache,
		updates:   updates,
		log:       log.Named("fetch"),
		now:       time.Now,
	}
}

// Execute fetches the data identified by params, replaces the cached copy and
// records LastUpdated. Nothing is written once ctx is cancelled.
func (e *FetchExecutor) Execute(ctx context.Context, params domain.UpdateParameters) error {
	if err := params.Validate(); err != nil {
		return err
	}

	var (
		count int
		err   error
	)
	switch params.Kind {
	case domain.UpdateKindPullRequests:
		count, err = e.refreshPullRequests(ctx, params.Target)
	case domain.UpdateKindQuery:
		count, err = e.refreshWorkItems(ctx, params.Target)
	case domain.UpdateKindPipelines:
		count, err = e.refreshPipelineRuns(ctx, params.Target)
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidUpdateKind, string(params.Kind))
	}
	if err != nil {
		return err
	}
	// A reset may have cleared the cache while the rows were being written.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := e.SetLastUpdated(ctx, params, e.now()); err != nil {
		return fmt.Errorf("record last updated: %w", err)
	}

	e.log.Info("refreshed %s (%d items)", params, count)
	return nil
}

func (e *FetchExecutor) refreshPullRequests(ctx context.Context, repo string) (int, error) {
	if e.pulls == nil {
		return 0, fmt.Errorf("%w: pull requests", domain.ErrSourceUnavailable)
	}
	if _, _, err := domain.SplitRepo(repo); err != nil {
		return 0, err
	}

	prs, err := e.pulls.ListPullRequests(ctx, repo)
	if err != nil {
		return 0, fmt.Errorf("list pull requests of %s: %w", repo, err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := e.cache.ReplacePullRequests(ctx, repo, prs); err != nil {
		return 0, fmt.Errorf("store pull requests: %w", err)
	}
	return len(prs), nil
}

func (e *FetchExecutor) refreshWorkItems(ctx context.Context, searchID string) (int, error) {
	if e.items == nil {
		return 0, fmt.Errorf("%w: work items", domain.ErrSourceUnavailable)
	}
	if e.searches == nil {
		return 0, fmt.Errorf("%w: saved searches", domain.ErrSourceUnavailable)
	}

	search, err := e.searches.Get(ctx, searchID)
	if err != nil {
		return 0, fmt.Errorf("saved search %s: %w", searchID, err)
	}

	items, err := e.items.SearchWorkItems(ctx, search.Query)
	if err != nil {
		return 0, fmt.Errorf("search %q: %w", search.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	for i := range items {
		items[i].SearchID = searchID
	}
	if err := e.cache.ReplaceWorkItems(ctx, searchID, items); err != nil {
		return 0, fmt.Errorf("store work items: %w", err)
	}
	return len(items), nil
}

func (e *FetchExecutor) refreshPipelineRuns(ctx context.Context, repo string) (int, error) {
	if e.pipelines == nil {
		return 0, fmt.Errorf("%w: pipelines", domain.ErrSourceUnavailable)
	}
	if _, _, err := domain.SplitRepo(repo); err != nil {
		return 0, err
	}

	runs, err := e.pipelines.ListPipelineRuns(ctx, repo)
	if err != nil {
		return 0, fmt.Errorf("list workflow runs of %s: %w", repo, err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := e.cache.ReplacePipelineRuns(ctx, repo, runs); err != nil {
		return 0, fmt.Errorf("store workflow runs: %w", err)
	}
	return len(runs), nil
}

// IsStale returns true if the scope was never updated or its cooldown has
// elapsed. A failed lookup counts as stale.
func (e *FetchExecutor) IsStale(ctx context.Context, params domain.UpdateParameters, cooldown time.Duration) bool {
	return domain.IsStale(e.LastUpdated(ctx, params), e.now(), cooldown)
}

// LastUpdated returns when the scope was last refreshed.
func (e *FetchExecutor) LastUpdated(ctx context.Context, params domain.UpdateParameters) time.Time {
	at, err := e.updates.GetLastUpdated(ctx, params.Scope())
	if err != nil {
		e.log.Warn("reading last updated of %s: %v", params, err)
		return domain.NeverUpdated
	}
	return at
}

// SetLastUpdated records when the scope was last refreshed.
func (e *FetchExecutor) SetLastUpdated(ctx context.Context, params domain.UpdateParameters, at time.Time) error {
	return e.updates.SetLastUpdated(ctx, params.Scope(), at)
}
