package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/logger"
)

type executorFixture struct {
	exec     *FetchExecutor
	sources  *mockSources
	searches *mockSavedSearchStore
	cache    *mockCacheStore
	updates  *mockUpdateStateStore
	now      time.Time
}

func newExecutorFixture() *executorFixture {
	f := &executorFixture{
		sources:  &mockSources{},
		searches: newMockSavedSearchStore(),
		cache:    newMockCacheStore(),
		updates:  newMockUpdateStateStore(),
		now:      time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	f.exec = NewFetchExecutor(f.sources, f.sources, f.sources, f.searches, f.cache, f.updates, logger.Discard())
	f.exec.now = func() time.Time { return f.now }
	return f
}

func TestFetchExecutor_PullRequests(t *testing.T) {
	f := newExecutorFixture()
	f.sources.prs = []domain.PullRequest{
		{Repo: "acme/widgets", Number: 1, Title: "Add gears"},
		{Repo: "acme/widgets", Number: 2, Title: "Remove sprockets", Draft: true},
	}
	ctx := context.Background()

	require.NoError(t, f.exec.Execute(ctx, widgetPRs))

	prs, _ := f.cache.ListPullRequests(ctx, "acme/widgets")
	assert.Len(t, prs, 2)
	assert.Equal(t, []string{"acme/widgets"}, f.sources.repos)
	assert.Equal(t, f.now, f.exec.LastUpdated(ctx, widgetPRs))
}

func TestFetchExecutor_PipelineRuns(t *testing.T) {
	f := newExecutorFixture()
	f.sources.runs = []domain.PipelineRun{{Repo: "acme/widgets", ID: 99, Name: "ci", Status: "completed"}}
	ctx := context.Background()

	require.NoError(t, f.exec.Execute(ctx, widgetRuns))

	runs, _ := f.cache.ListPipelineRuns(ctx, "acme/widgets")
	require.Len(t, runs, 1)
	assert.Equal(t, int64(99), runs[0].ID)
	assert.Equal(t, f.now, f.exec.LastUpdated(ctx, widgetRuns))
	assert.Equal(t, domain.NeverUpdated, f.exec.LastUpdated(ctx, widgetPRs))
}

func TestFetchExecutor_Query(t *testing.T) {
	f := newExecutorFixture()
	ctx := context.Background()
	require.NoError(t, f.searches.Save(ctx, domain.SavedSearch{ID: "s1", Name: "mine", Query: "is:open author:@me"}))
	f.sources.items = []domain.WorkItem{{Repo: "acme/widgets", Number: 5}}
	params := domain.UpdateParameters{Kind: domain.UpdateKindQuery, Target: "s1"}

	require.NoError(t, f.exec.Execute(ctx, params))

	assert.Equal(t, []string{"is:open author:@me"}, f.sources.queries)
	items, _ := f.cache.ListWorkItems(ctx, "s1")
	require.Len(t, items, 1)
	assert.Equal(t, "s1", items[0].SearchID)
}

func TestFetchExecutor_QueryUnknownSearch(t *testing.T) {
	f := newExecutorFixture()
	params := domain.UpdateParameters{Kind: domain.UpdateKindQuery, Target: "missing"}

	err := f.exec.Execute(context.Background(), params)

	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.sources.queries)
}

func TestFetchExecutor_InvalidKind(t *testing.T) {
	f := newExecutorFixture()

	err := f.exec.Execute(context.Background(), domain.UpdateParameters{Kind: "bogus"})

	require.ErrorIs(t, err, domain.ErrInvalidUpdateKind)
}

func TestFetchExecutor_InvalidRepo(t *testing.T) {
	f := newExecutorFixture()

	err := f.exec.Execute(context.Background(), domain.UpdateParameters{Kind: domain.UpdateKindPullRequests, Target: "widgets"})

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.sources.repos)
}

func TestFetchExecutor_SourceError(t *testing.T) {
	f := newExecutorFixture()
	f.sources.err = errors.New("rate limited")
	ctx := context.Background()

	err := f.exec.Execute(ctx, widgetPRs)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Equal(t, domain.NeverUpdated, f.exec.LastUpdated(ctx, widgetPRs))
}

func TestFetchExecutor_StoreError(t *testing.T) {
	f := newExecutorFixture()
	f.cache.writeErr = errors.New("readonly database")
	ctx := context.Background()

	err := f.exec.Execute(ctx, widgetPRs)

	require.Error(t, err)
	assert.Equal(t, domain.NeverUpdated, f.exec.LastUpdated(ctx, widgetPRs))
}

func TestFetchExecutor_CancelledBeforeWrite(t *testing.T) {
	f := newExecutorFixture()
	f.sources.prs = []domain.PullRequest{{Repo: "acme/widgets", Number: 1}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.exec.Execute(ctx, widgetPRs)

	require.ErrorIs(t, err, context.Canceled)
	prs, _ := f.cache.ListPullRequests(context.Background(), "acme/widgets")
	assert.Empty(t, prs)
}

func TestFetchExecutor_CancelledDuringWrite(t *testing.T) {
	f := newExecutorFixture()
	f.sources.prs = []domain.PullRequest{{Repo: "acme/widgets", Number: 1}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.cache.onWrite = cancel

	err := f.exec.Execute(ctx, widgetPRs)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.NeverUpdated, f.exec.LastUpdated(context.Background(), widgetPRs))
}

func TestFetchExecutor_MissingSource(t *testing.T) {
	exec := NewFetchExecutor(nil, nil, nil, nil, newMockCacheStore(), newMockUpdateStateStore(), logger.Discard())
	ctx := context.Background()

	assert.ErrorIs(t, exec.Execute(ctx, widgetPRs), domain.ErrSourceUnavailable)
	assert.ErrorIs(t, exec.Execute(ctx, widgetRuns), domain.ErrSourceUnavailable)
	assert.ErrorIs(t, exec.Execute(ctx, domain.UpdateParameters{Kind: domain.UpdateKindQuery, Target: "s"}),
		domain.ErrSourceUnavailable)
}

func TestFetchExecutor_IsStale(t *testing.T) {
	f := newExecutorFixture()
	ctx := context.Background()
	cooldown := 3 * time.Minute

	// Never updated.
	assert.True(t, f.exec.IsStale(ctx, widgetPRs, cooldown))
	assert.True(t, f.exec.IsStale(ctx, widgetPRs, 24*time.Hour))

	require.NoError(t, f.exec.SetLastUpdated(ctx, widgetPRs, f.now.Add(-time.Minute)))
	assert.False(t, f.exec.IsStale(ctx, widgetPRs, cooldown))

	require.NoError(t, f.exec.SetLastUpdated(ctx, widgetPRs, f.now.Add(-4*time.Minute)))
	assert.True(t, f.exec.IsStale(ctx, widgetPRs, cooldown))
}

func TestFetchExecutor_IsStaleOnStoreError(t *testing.T) {
	f := newExecutorFixture()
	f.updates.getErr = errors.New("locked")

	assert.True(t, f.exec.IsStale(context.Background(), widgetPRs, time.Hour))
	assert.Equal(t, domain.NeverUpdated, f.exec.LastUpdated(context.Background(), widgetPRs))
}
