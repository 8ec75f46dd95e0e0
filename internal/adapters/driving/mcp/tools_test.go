package mcp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prcache/internal/core/domain"
)

func newTestServer(t *testing.T, refresh *mockRefreshService, cache *mockCacheService) *Server {
	t.Helper()
	ports := &Ports{Refresh: refresh}
	if cache != nil {
		ports.Cache = cache
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("reports a started refresh", func(t *testing.T) {
		refresh := newMockRefreshService()
		refresh.startOnRequest = true
		server := newTestServer(t, refresh, nil)

		_, out, err := server.handleRefresh(ctx, nil, RefreshInput{Kind: "prs", Target: "acme/widgets"})

		require.NoError(t, err)
		assert.Equal(t, resultStarted, out.Result)
		assert.Equal(t, "refreshing", out.State)
		assert.Equal(t, []domain.UpdateParameters{
			{Kind: domain.UpdateKindPullRequests, Target: "acme/widgets"},
		}, refresh.requests)
		assert.Empty(t, refresh.handlers)
		assert.Equal(t, uint64(1), out.Generation)
	})

	t.Run("force bypasses the cooldown", func(t *testing.T) {
		refresh := newMockRefreshService()
		refresh.startOnRequest = true
		server := newTestServer(t, refresh, nil)

		_, out, err := server.handleRefresh(ctx, nil, RefreshInput{Kind: "prs", Target: "acme/widgets", Force: true})

		require.NoError(t, err)
		assert.Equal(t, resultStarted, out.Result)
		assert.Equal(t, 1, refresh.forced)
	})

	t.Run("queued behind a periodic fetch of the same scope", func(t *testing.T) {
		refresh := newMockRefreshService()
		refresh.onRequest = func(m *mockRefreshService, params domain.UpdateParameters) {
			// The scheduler dispatches the same scope, then the request is remembered.
			periodic := params
			periodic.Generation = 4
			m.emit(domain.Notification{Kind: domain.NotificationStarted, Parameters: &periodic})
			m.state = domain.StatePendingRefresh
			m.pending = &params
		}
		server := newTestServer(t, refresh, nil)

		_, out, err := server.handleRefresh(ctx, nil, RefreshInput{Kind: "prs", Target: "acme/widgets"})

		require.NoError(t, err)
		assert.Equal(t, resultQueued, out.Result)
		assert.Zero(t, out.Generation)
	})

	t.Run("concurrent calls for one scope start once", func(t *testing.T) {
		refresh := newMockRefreshService()
		refresh.startWhenIdle = true
		server := newTestServer(t, refresh, nil)

		results := make(chan string, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, out, err := server.handleRefresh(ctx, nil, RefreshInput{Kind: "prs", Target: "acme/widgets"})
				assert.NoError(t, err)
				results <- out.Result
			}()
		}
		wg.Wait()
		close(results)

		var got []string
		for r := range results {
			got = append(got, r)
		}
		assert.ElementsMatch(t, []string{resultStarted, resultDropped}, got)
	})

	t.Run("reports a fresh scope", func(t *testing.T) {
		server := newTestServer(t, newMockRefreshService(), nil)

		_, out, err := server.handleRefresh(ctx, nil, RefreshInput{Kind: "runs", Target: "acme/widgets"})

		require.NoError(t, err)
		assert.Equal(t, resultFresh, out.Result)
		assert.Equal(t, "idle", out.State)
	})

	t.Run("reports a queued request", func(t *testing.T) {
		refresh := newMockRefreshService()
		refresh.state = domain.StatePendingRefresh
		refresh.pending = &domain.UpdateParameters{Kind: domain.UpdateKindQuery, Target: "s1"}
		server := newTestServer(t, refresh, nil)

		_, out, err := server.handleRefresh(ctx, nil, RefreshInput{Kind: "query", Target: "s1"})

		require.NoError(t, err)
		assert.Equal(t, resultQueued, out.Result)
	})

	t.Run("reports a dropped request", func(t *testing.T) {
		refresh := newMockRefreshService()
		refresh.state = domain.StateRefreshing
		server := newTestServer(t, refresh, nil)

		_, out, err := server.handleRefresh(ctx, nil, RefreshInput{Kind: "prs", Target: "acme/widgets"})

		require.NoError(t, err)
		assert.Equal(t, resultDropped, out.Result)
	})

	t.Run("rejects unknown kinds", func(t *testing.T) {
		server := newTestServer(t, newMockRefreshService(), nil)

		_, _, err := server.handleRefresh(ctx, nil, RefreshInput{Kind: "commits", Target: "acme/widgets"})

		assert.ErrorIs(t, err, domain.ErrInvalidUpdateKind)
	})

	t.Run("requires a target", func(t *testing.T) {
		server := newTestServer(t, newMockRefreshService(), nil)

		_, _, err := server.handleRefresh(ctx, nil, RefreshInput{Kind: "prs", Target: " "})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("returns coordinator errors", func(t *testing.T) {
		refresh := newMockRefreshService()
		refresh.err = domain.ErrCoordinatorClosed
		server := newTestServer(t, refresh, nil)

		_, _, err := server.handleRefresh(ctx, nil, RefreshInput{Kind: "prs", Target: "acme/widgets"})

		assert.ErrorIs(t, err, domain.ErrCoordinatorClosed)
	})
}

func TestServer_handleCancelRefresh(t *testing.T) {
	refresh := newMockRefreshService()
	server := newTestServer(t, refresh, nil)

	_, out, err := server.handleCancelRefresh(context.Background(), nil, struct{}{})
	require.NoError(t, err)
	assert.False(t, out.Cancelled)

	refresh.state = domain.StateRefreshing
	_, out, err = server.handleCancelRefresh(context.Background(), nil, struct{}{})
	require.NoError(t, err)
	assert.True(t, out.Cancelled)
	assert.True(t, refresh.cancelled)
}

func TestServer_handleRefreshStatus(t *testing.T) {
	ctx := context.Background()
	updated := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

	t.Run("includes update records", func(t *testing.T) {
		refresh := newMockRefreshService()
		refresh.state = domain.StatePendingRefresh
		refresh.pending = &domain.UpdateParameters{Kind: domain.UpdateKindPullRequests, Target: "acme/widgets"}
		refresh.settings.Periodic.Target = "acme/widgets"
		cache := &mockCacheService{records: []domain.UpdateRecord{
			{Scope: "pull_requests:acme/widgets", LastUpdated: updated},
		}}
		server := newTestServer(t, refresh, cache)

		_, out, err := server.handleRefreshStatus(ctx, nil, struct{}{})

		require.NoError(t, err)
		assert.Equal(t, "pending_refresh", out.State)
		assert.Equal(t, "pull_requests acme/widgets", out.Pending)
		assert.Equal(t, "pull_requests acme/widgets", out.Periodic)
		assert.Equal(t, "3m0s", out.Cooldown)
		assert.Equal(t, []ScopeOutput{{Scope: "pull_requests:acme/widgets", LastUpdated: "2026-02-03T04:05:06Z"}}, out.Scopes)
	})

	t.Run("works without a cache", func(t *testing.T) {
		server := newTestServer(t, newMockRefreshService(), nil)

		_, out, err := server.handleRefreshStatus(ctx, nil, struct{}{})

		require.NoError(t, err)
		assert.Equal(t, "idle", out.State)
		assert.Empty(t, out.Periodic)
		assert.Empty(t, out.Scopes)
	})

	t.Run("returns cache errors", func(t *testing.T) {
		server := newTestServer(t, newMockRefreshService(), &mockCacheService{err: errors.New("disk full")})

		_, _, err := server.handleRefreshStatus(ctx, nil, struct{}{})

		assert.ErrorContains(t, err, "listing update records")
	})
}
