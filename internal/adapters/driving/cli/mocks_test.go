package cli

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/core/ports/driving"
)

// mockRefreshService implements driving.RefreshService for testing.
type mockRefreshService struct {
	mu       sync.Mutex
	handlers map[driving.SubscriptionID]driving.NotificationHandler
	nextID   driving.SubscriptionID

	state    domain.RefreshState
	pending  *domain.UpdateParameters
	settings domain.RefreshSettings

	requests        []domain.UpdateParameters
	forced          []domain.UpdateParameters
	settingsUpdates []domain.RefreshSettings
	cancels         int
	clears          int
	accountChanges  int
	periodicStarted bool
	periodicStopped bool

	requestErr error
	onRequest  func(m *mockRefreshService, params domain.UpdateParameters)
	onCancel   func(m *mockRefreshService)
}

func newMockRefreshService() *mockRefreshService {
	return &mockRefreshService{
		handlers: make(map[driving.SubscriptionID]driving.NotificationHandler),
		settings: domain.DefaultRefreshSettings(),
	}
}

func (m *mockRefreshService) RequestRefresh(_ context.Context, params domain.UpdateParameters) error {
	m.mu.Lock()
	m.requests = append(m.requests, params)
	err, hook := m.requestErr, m.onRequest
	m.mu.Unlock()
	if err != nil {
		return err
	}
	if hook != nil {
		hook(m, params)
	}
	return nil
}

func (m *mockRefreshService) ForceRefresh(_ context.Context, params domain.UpdateParameters) error {
	m.mu.Lock()
	m.forced = append(m.forced, params)
	err, hook := m.requestErr, m.onRequest
	m.mu.Unlock()
	if err != nil {
		return err
	}
	if hook != nil {
		hook(m, params)
	}
	return nil
}

func (m *mockRefreshService) CancelInProgress() bool {
	m.mu.Lock()
	m.cancels++
	hook := m.onCancel
	m.mu.Unlock()
	if hook != nil {
		hook(m)
	}
	return true
}

func (m *mockRefreshService) StartPeriodic() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periodicStarted = true
}

func (m *mockRefreshService) StopPeriodic() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periodicStopped = true
}

func (m *mockRefreshService) Subscribe(handler driving.NotificationHandler) driving.SubscriptionID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.handlers[m.nextID] = handler
	return m.nextID
}

func (m *mockRefreshService) Unsubscribe(id driving.SubscriptionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, id)
}

func (m *mockRefreshService) State() domain.RefreshState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *mockRefreshService) Pending() (domain.UpdateParameters, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return domain.UpdateParameters{}, false
	}
	return *m.pending, true
}

func (m *mockRefreshService) ClearCache(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	return nil
}

func (m *mockRefreshService) NotifyAccountChanged(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accountChanges++
	return nil
}

func (m *mockRefreshService) UpdateSettings(_ context.Context, settings domain.RefreshSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = settings
	m.settingsUpdates = append(m.settingsUpdates, settings)
	return nil
}

func (m *mockRefreshService) Settings() domain.RefreshSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// emit delivers n to every subscriber.
func (m *mockRefreshService) emit(n domain.Notification) {
	m.mu.Lock()
	ids := make([]int, 0, len(m.handlers))
	for id := range m.handlers {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	handlers := make([]driving.NotificationHandler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, m.handlers[driving.SubscriptionID(id)])
	}
	m.mu.Unlock()

	for _, h := range handlers {
		h(n)
	}
}

func (m *mockRefreshService) subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers)
}

func note(kind domain.NotificationKind, params domain.UpdateParameters, generation uint64) domain.Notification {
	params.Generation = generation
	return domain.Notification{Kind: kind, Parameters: &params}
}

// mockCacheService implements driving.CacheService for testing.
type mockCacheService struct {
	pulls   map[string][]domain.PullRequest
	items   map[string][]domain.WorkItem
	runs    map[string][]domain.PipelineRun
	records []domain.UpdateRecord
	err     error
}

func (m *mockCacheService) PullRequests(_ context.Context, repo string) ([]domain.PullRequest, error) {
	return m.pulls[repo], m.err
}

func (m *mockCacheService) WorkItems(_ context.Context, searchID string) ([]domain.WorkItem, error) {
	return m.items[searchID], m.err
}

func (m *mockCacheService) PipelineRuns(_ context.Context, repo string) ([]domain.PipelineRun, error) {
	return m.runs[repo], m.err
}

func (m *mockCacheService) UpdateRecords(_ context.Context) ([]domain.UpdateRecord, error) {
	return m.records, m.err
}

// mockSavedSearchService implements driving.SavedSearchService for testing.
type mockSavedSearchService struct {
	searches map[string]domain.SavedSearch
	removed  []string
}

func newMockSavedSearchService(searches ...domain.SavedSearch) *mockSavedSearchService {
	m := &mockSavedSearchService{searches: make(map[string]domain.SavedSearch)}
	for _, s := range searches {
		m.searches[s.ID] = s
	}
	return m
}

func (m *mockSavedSearchService) Add(_ context.Context, name, query string) (*domain.SavedSearch, error) {
	s := domain.SavedSearch{ID: "search-1", Name: name, Query: query}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	m.searches[s.ID] = s
	return &s, nil
}

func (m *mockSavedSearchService) Get(_ context.Context, id string) (*domain.SavedSearch, error) {
	s, ok := m.searches[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *mockSavedSearchService) List(_ context.Context) ([]domain.SavedSearch, error) {
	out := make([]domain.SavedSearch, 0, len(m.searches))
	for _, s := range m.searches {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockSavedSearchService) Remove(_ context.Context, id string) error {
	if _, ok := m.searches[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.searches, id)
	m.removed = append(m.removed, id)
	return nil
}

// mockSettingsService implements driving.SettingsService over a plain map.
type mockSettingsService struct {
	values map[string]string
	setErr error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{values: make(map[string]string)}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := domain.DefaultAppSettings()
	s.GitHub.Token = m.values[domain.SettingGitHubToken]
	return &s, nil
}

func (m *mockSettingsService) Save(_ *domain.AppSettings) error { return nil }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) Value(key string) (string, error) {
	for _, k := range domain.SettingKeys() {
		if k == key {
			return m.values[key], nil
		}
	}
	return "", domain.ErrInvalidInput
}

func (m *mockSettingsService) SetValue(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Unset(key string) error {
	delete(m.values, key)
	return nil
}

func (m *mockSettingsService) Validate() error { return nil }

func (m *mockSettingsService) RefreshSettings() domain.RefreshSettings {
	s := domain.DefaultRefreshSettings()
	s.Periodic.Target = m.values[domain.SettingRefreshPeriodicTarget]
	return s
}

func (m *mockSettingsService) ConfigPath() string { return "/tmp/prcache/config.toml" }

// mockTokenProvider implements driven.TokenProvider for testing.
type mockTokenProvider struct {
	token  string
	method domain.AuthMethod
}

func (m *mockTokenProvider) GetToken(_ context.Context) (string, error) {
	if m.token == "" {
		return "", domain.ErrAuthRequired
	}
	return m.token, nil
}

func (m *mockTokenProvider) AuthMethod() domain.AuthMethod { return m.method }

func (m *mockTokenProvider) IsAuthenticated() bool { return m.token != "" }

// setServices installs s for the duration of the test and resets flag values.
func setServices(t *testing.T, s Services) {
	t.Helper()
	SetServices(s)
	resetFlags()
	t.Cleanup(func() {
		SetServices(Services{})
		resetFlags()
	})
}

func resetFlags() {
	refreshForce = false
	listJSON = false
	authToken = ""
	configShowSecrets = false
	watchTUI = false
	verbose = false
	_ = mcpServeCmd.Flags().Set("port", "0")
}

// execute runs the root command with args and returns its combined output.
func execute(ctx context.Context, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}
