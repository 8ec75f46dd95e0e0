package services

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/core/ports/driven"
)

// --- Mock update executor ---

// execCall is one blocked Execute call. Send on result to complete it.
type execCall struct {
	ctx    context.Context
	params domain.UpdateParameters
	result chan error
}

func (c *execCall) succeed() { c.result <- nil }
func (c *execCall) fail(err error) {
	c.result <- err
}

// mockExecutor blocks every Execute call until the test completes it.
type mockExecutor struct {
	calls chan *execCall

	mu           sync.Mutex
	fresh        map[string]bool
	inFlight     int
	maxInFlight  int
	ignoreCancel bool
}

var _ driven.UpdateExecutor = (*mockExecutor)(nil)

func newMockExecutor() *mockExecutor {
	return &mockExecutor{
		calls: make(chan *execCall, 16),
		fresh: make(map[string]bool),
	}
}

func (m *mockExecutor) Execute(ctx context.Context, params domain.UpdateParameters) error {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	ignoreCancel := m.ignoreCancel
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	call := &execCall{ctx: ctx, params: params, result: make(chan error, 1)}
	m.calls <- call

	if ignoreCancel {
		return <-call.result
	}
	select {
	case err := <-call.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockExecutor) IsStale(_ context.Context, params domain.UpdateParameters, _ time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.fresh[params.Scope()]
}

func (m *mockExecutor) LastUpdated(_ context.Context, params domain.UpdateParameters) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fresh[params.Scope()] {
		return time.Now()
	}
	return domain.NeverUpdated
}

func (m *mockExecutor) SetLastUpdated(_ context.Context, params domain.UpdateParameters, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fresh[params.Scope()] = true
	return nil
}

func (m *mockExecutor) setFresh(params domain.UpdateParameters) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fresh[params.Scope()] = true
}

func (m *mockExecutor) peak() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

// next waits for the next Execute call.
func (m *mockExecutor) next(t *testing.T) *execCall {
	t.Helper()
	select {
	case c := <-m.calls:
		return c
	case <-time.After(time.Second):
		t.Fatal("expected an Execute call")
		return nil
	}
}

// assertNoCall fails if Execute is called within a short window.
func (m *mockExecutor) assertNoCall(t *testing.T) {
	t.Helper()
	select {
	case c := <-m.calls:
		t.Fatalf("unexpected Execute(%s)", c.params)
	case <-time.After(20 * time.Millisecond):
	}
}

// --- Notification recorder ---

type recorder struct {
	mu    sync.Mutex
	notes []domain.Notification
	ch    chan domain.Notification
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan domain.Notification, 64)}
}

func (r *recorder) handle(n domain.Notification) {
	r.mu.Lock()
	r.notes = append(r.notes, n)
	r.mu.Unlock()
	r.ch <- n
}

// wait returns the next notification, failing if it is not of kind.
func (r *recorder) wait(t *testing.T, kind domain.NotificationKind) domain.Notification {
	t.Helper()
	select {
	case n := <-r.ch:
		require.Equal(t, kind, n.Kind, "got notification %s", n)
		return n
	case <-time.After(time.Second):
		t.Fatalf("expected %s notification", kind)
		return domain.Notification{}
	}
}

func (r *recorder) assertNone(t *testing.T) {
	t.Helper()
	select {
	case n := <-r.ch:
		t.Fatalf("unexpected notification %s", n)
	case <-time.After(20 * time.Millisecond):
	}
}

func (r *recorder) kinds() []domain.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]domain.NotificationKind, len(r.notes))
	for i, n := range r.notes {
		kinds[i] = n.Kind
	}
	return kinds
}

// --- Mock stores ---

type mockCacheStore struct {
	mu       sync.Mutex
	prs      map[string][]domain.PullRequest
	items    map[string][]domain.WorkItem
	runs     map[string][]domain.PipelineRun
	clearErr error
	cleared  int
	writeErr error

	// onWrite runs at the start of every Replace call, outside the lock.
	onWrite func()
}

var _ driven.CacheStore = (*mockCacheStore)(nil)

func newMockCacheStore() *mockCacheStore {
	return &mockCacheStore{
		prs:   make(map[string][]domain.PullRequest),
		items: make(map[string][]domain.WorkItem),
		runs:  make(map[string][]domain.PipelineRun),
	}
}

func (m *mockCacheStore) ReplacePullRequests(_ context.Context, repo string, prs []domain.PullRequest) error {
	if m.onWrite != nil {
		m.onWrite()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.prs[repo] = prs
	return nil
}

func (m *mockCacheStore) ListPullRequests(_ context.Context, repo string) ([]domain.PullRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prs[repo], nil
}

func (m *mockCacheStore) ReplaceWorkItems(_ context.Context, searchID string, items []domain.WorkItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.items[searchID] = items
	return nil
}

func (m *mockCacheStore) ListWorkItems(_ context.Context, searchID string) ([]domain.WorkItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[searchID], nil
}

func (m *mockCacheStore) ReplacePipelineRuns(_ context.Context, repo string, runs []domain.PipelineRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.runs[repo] = runs
	return nil
}

func (m *mockCacheStore) ListPipelineRuns(_ context.Context, repo string) ([]domain.PipelineRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs[repo], nil
}

func (m *mockCacheStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared++
	m.prs = make(map[string][]domain.PullRequest)
	m.items = make(map[string][]domain.WorkItem)
	m.runs = make(map[string][]domain.PipelineRun)
	return nil
}

type mockUpdateStateStore struct {
	mu      sync.Mutex
	records map[string]time.Time
	getErr  error
	cleared int
}

var _ driven.UpdateStateStore = (*mockUpdateStateStore)(nil)

func newMockUpdateStateStore() *mockUpdateStateStore {
	return &mockUpdateStateStore{records: make(map[string]time.Time)}
}

func (m *mockUpdateStateStore) GetLastUpdated(_ context.Context, scope string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return time.Time{}, m.getErr
	}
	return m.records[scope], nil
}

func (m *mockUpdateStateStore) SetLastUpdated(_ context.Context, scope string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[scope] = at
	return nil
}

func (m *mockUpdateStateStore) List(_ context.Context) ([]domain.UpdateRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]domain.UpdateRecord, 0, len(m.records))
	for scope, at := range m.records {
		records = append(records, domain.UpdateRecord{Scope: scope, LastUpdated: at})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Scope < records[j].Scope })
	return records, nil
}

func (m *mockUpdateStateStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
	m.records = make(map[string]time.Time)
	return nil
}

type mockSavedSearchStore struct {
	mu       sync.Mutex
	searches map[string]domain.SavedSearch
}

var _ driven.SavedSearchStore = (*mockSavedSearchStore)(nil)

func newMockSavedSearchStore() *mockSavedSearchStore {
	return &mockSavedSearchStore{searches: make(map[string]domain.SavedSearch)}
}

func (m *mockSavedSearchStore) Save(_ context.Context, search domain.SavedSearch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches[search.ID] = search
	return nil
}

func (m *mockSavedSearchStore) Get(_ context.Context, id string) (*domain.SavedSearch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.searches[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *mockSavedSearchStore) List(_ context.Context) ([]domain.SavedSearch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]domain.SavedSearch, 0, len(m.searches))
	for _, s := range m.searches {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (m *mockSavedSearchStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.searches, id)
	return nil
}

// --- Mock GitHub sources ---

type mockSources struct {
	mu      sync.Mutex
	prs     []domain.PullRequest
	items   []domain.WorkItem
	runs    []domain.PipelineRun
	err     error
	queries []string
	repos   []string
}

var (
	_ driven.PullRequestSource = (*mockSources)(nil)
	_ driven.WorkItemSource    = (*mockSources)(nil)
	_ driven.PipelineSource    = (*mockSources)(nil)
)

func (m *mockSources) ListPullRequests(_ context.Context, repo string) ([]domain.PullRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repos = append(m.repos, repo)
	return m.prs, m.err
}

func (m *mockSources) SearchWorkItems(_ context.Context, query string) ([]domain.WorkItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	return m.items, m.err
}

func (m *mockSources) ListPipelineRuns(_ context.Context, repo string) ([]domain.PipelineRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repos = append(m.repos, repo)
	return m.runs, m.err
}
