package domain

import (
	"fmt"
	"strings"
	"time"
)

// NeverUpdated is the LastUpdated value of a scope that has never been refreshed.
var NeverUpdated = time.Time{}

// RefreshState is the state of the refresh coordinator.
type RefreshState int

// Refresh states.
const (
	// StateIdle means no fetch is in flight.
	StateIdle RefreshState = iota

	// StateRefreshing means a user-requested fetch is in flight.
	StateRefreshing

	// StatePeriodicUpdating means a periodic housekeeping fetch is in flight.
	StatePeriodicUpdating

	// StatePendingRefresh means a periodic fetch is in flight and a user
	// request is remembered to run once it completes.
	StatePendingRefresh
)

// String returns the string representation.
func (s RefreshState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRefreshing:
		return "refreshing"
	case StatePeriodicUpdating:
		return "periodic_updating"
	case StatePendingRefresh:
		return "pending_refresh"
	default:
		return fmt.Sprintf("RefreshState(%d)", int(s))
	}
}

// UpdateKind identifies what kind of data an update fetches.
type UpdateKind string

// Supported update kinds.
const (
	// UpdateKindPullRequests refreshes the pull requests of a repository.
	UpdateKindPullRequests UpdateKind = "pull_requests"

	// UpdateKindQuery refreshes the results of a saved work-item search.
	UpdateKindQuery UpdateKind = "query"

	// UpdateKindPipelines refreshes the workflow runs of a repository.
	UpdateKindPipelines UpdateKind = "pipelines"
)

// AllUpdateKinds returns every supported update kind.
func AllUpdateKinds() []UpdateKind {
	return []UpdateKind{UpdateKindPullRequests, UpdateKindQuery, UpdateKindPipelines}
}

// IsValid returns true if the update kind is recognised.
func (k UpdateKind) IsValid() bool {
	switch k {
	case UpdateKindPullRequests, UpdateKindQuery, UpdateKindPipelines:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k UpdateKind) String() string {
	return string(k)
}

// ParseUpdateKind parses a kind name. Short aliases ("prs", "runs") are accepted.
func ParseUpdateKind(s string) (UpdateKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pull_requests", "pulls", "prs":
		return UpdateKindPullRequests, nil
	case "query", "items", "search":
		return UpdateKindQuery, nil
	case "pipelines", "runs":
		return UpdateKindPipelines, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidUpdateKind, s)
	}
}

// UpdateParameters identifies what to refresh.
type UpdateParameters struct {
	// Kind is the update kind.
	Kind UpdateKind

	// Target is the kind-specific reference: "owner/repo" for pull requests
	// and pipelines, a saved search ID for queries.
	Target string

	// Generation identifies the cancellation handle the parameters were
	// dispatched with. Zero until dispatched.
	Generation uint64
}

// Validate checks the parameters can be dispatched.
func (p UpdateParameters) Validate() error {
	if !p.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidUpdateKind, string(p.Kind))
	}
	return nil
}

// Scope returns the key LastUpdated is tracked under.
func (p UpdateParameters) Scope() string {
	return string(p.Kind) + ":" + p.Target
}

// String returns a human-readable form.
func (p UpdateParameters) String() string {
	if p.Target == "" {
		return string(p.Kind)
	}
	return string(p.Kind) + " " + p.Target
}

// IsStale reports whether data last updated at lastUpdated should be refetched.
// Data that was never updated is always stale.
func IsStale(lastUpdated, now time.Time, cooldown time.Duration) bool {
	if lastUpdated.IsZero() {
		return true
	}
	return now.Sub(lastUpdated) > cooldown
}

// UpdateRecord is the LastUpdated value of a single scope.
type UpdateRecord struct {
	// Scope is the UpdateParameters scope key.
	Scope string

	// LastUpdated is when the scope was last refreshed successfully.
	LastUpdated time.Time
}

// BusyPolicy decides what happens to a refresh request that arrives while a
// user-requested refresh is already in flight.
type BusyPolicy string

// Busy policies.
const (
	// BusyPolicyDrop drops the request.
	BusyPolicyDrop BusyPolicy = "drop"

	// BusyPolicyQueue remembers the request and runs it after the in-flight refresh.
	BusyPolicyQueue BusyPolicy = "queue"
)

// IsValid returns true if the policy is recognised.
func (p BusyPolicy) IsValid() bool {
	return p == BusyPolicyDrop || p == BusyPolicyQueue
}

// RefreshSettings configures the refresh coordinator.
type RefreshSettings struct {
	// Cooldown is the minimum age of data before a requested refresh proceeds.
	Cooldown time.Duration

	// Interval is the periodic refresh tick rate.
	Interval time.Duration

	// OnBusy is applied to requests arriving during a user-requested refresh.
	OnBusy BusyPolicy

	// Periodic is what each periodic tick refreshes.
	Periodic UpdateParameters
}

// Default refresh settings.
const (
	DefaultCooldown = 3 * time.Minute
	DefaultInterval = 5 * time.Minute
)

// DefaultRefreshSettings returns sensible defaults.
func DefaultRefreshSettings() RefreshSettings {
	return RefreshSettings{
		Cooldown: DefaultCooldown,
		Interval: DefaultInterval,
		OnBusy:   BusyPolicyDrop,
		Periodic: UpdateParameters{Kind: UpdateKindPullRequests},
	}
}

// PeriodicEnabled returns true if periodic refreshes have a target.
func (s RefreshSettings) PeriodicEnabled() bool {
	return s.Periodic.Target != "" && s.Interval > 0
}
