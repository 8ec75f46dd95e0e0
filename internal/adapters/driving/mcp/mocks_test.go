package mcp

import (
	"context"

	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/core/ports/driving"
)

// mockRefreshService implements driving.RefreshService for testing.
type mockRefreshService struct {
	handlers map[driving.SubscriptionID]driving.NotificationHandler
	nextID   driving.SubscriptionID

	state     domain.RefreshState
	pending   *domain.UpdateParameters
	settings  domain.RefreshSettings
	requests  []domain.UpdateParameters
	forced    int
	cancelled bool

	// startOnRequest emits Started for every request, as a dispatch would.
	startOnRequest bool
	// startWhenIdle dispatches only from the idle state and drops otherwise.
	startWhenIdle bool
	onRequest     func(m *mockRefreshService, params domain.UpdateParameters)
	err           error
}

func newMockRefreshService() *mockRefreshService {
	return &mockRefreshService{
		handlers: make(map[driving.SubscriptionID]driving.NotificationHandler),
		settings: domain.DefaultRefreshSettings(),
	}
}

func (m *mockRefreshService) RequestRefresh(_ context.Context, params domain.UpdateParameters) error {
	if m.err != nil {
		return m.err
	}
	m.requests = append(m.requests, params)
	if m.onRequest != nil {
		m.onRequest(m, params)
	}
	if m.startOnRequest || (m.startWhenIdle && m.state == domain.StateIdle) {
		m.state = domain.StateRefreshing
		params.Generation = uint64(len(m.requests))
		m.emit(domain.Notification{Kind: domain.NotificationStarted, Parameters: &params})
	}
	return nil
}

func (m *mockRefreshService) emit(n domain.Notification) {
	for _, h := range m.handlers {
		h(n)
	}
}

func (m *mockRefreshService) ForceRefresh(ctx context.Context, params domain.UpdateParameters) error {
	m.forced++
	return m.RequestRefresh(ctx, params)
}

func (m *mockRefreshService) CancelInProgress() bool {
	if m.state == domain.StateIdle {
		return false
	}
	m.cancelled = true
	return true
}

func (m *mockRefreshService) StartPeriodic() {}

func (m *mockRefreshService) StopPeriodic() {}

func (m *mockRefreshService) Subscribe(handler driving.NotificationHandler) driving.SubscriptionID {
	m.nextID++
	m.handlers[m.nextID] = handler
	return m.nextID
}

func (m *mockRefreshService) Unsubscribe(id driving.SubscriptionID) {
	delete(m.handlers, id)
}

func (m *mockRefreshService) State() domain.RefreshState { return m.state }

func (m *mockRefreshService) Pending() (domain.UpdateParameters, bool) {
	if m.pending == nil {
		return domain.UpdateParameters{}, false
	}
	return *m.pending, true
}

func (m *mockRefreshService) ClearCache(_ context.Context) error { return nil }

func (m *mockRefreshService) NotifyAccountChanged(_ context.Context) error { return nil }

func (m *mockRefreshService) UpdateSettings(_ context.Context, settings domain.RefreshSettings) error {
	m.settings = settings
	return nil
}

func (m *mockRefreshService) Settings() domain.RefreshSettings { return m.settings }

// mockCacheService implements driving.CacheService for testing.
type mockCacheService struct {
	pulls   []domain.PullRequest
	records []domain.UpdateRecord
	repo    string
	err     error
}

func (m *mockCacheService) PullRequests(_ context.Context, repo string) ([]domain.PullRequest, error) {
	m.repo = repo
	return m.pulls, m.err
}

func (m *mockCacheService) WorkItems(_ context.Context, _ string) ([]domain.WorkItem, error) {
	return nil, m.err
}

func (m *mockCacheService) PipelineRuns(_ context.Context, _ string) ([]domain.PipelineRun, error) {
	return nil, m.err
}

func (m *mockCacheService) UpdateRecords(_ context.Context) ([]domain.UpdateRecord, error) {
	return m.records, m.err
}
