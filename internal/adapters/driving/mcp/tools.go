package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/prcache/internal/core/domain"
)

// Refresh results reported by the refresh tool.
const (
	resultStarted = "started"
	resultQueued  = "queued"
	resultFresh   = "up_to_date"
	resultDropped = "dropped"
)

// RefreshInput is the input schema for the refresh tool.
type RefreshInput struct {
	Kind   string `json:"kind" jsonschema:"what to refresh: pull_requests, pipelines or query"`
	Target string `json:"target" jsonschema:"owner/repo for pull_requests and pipelines, a saved search ID for query"`
	Force  bool   `json:"force,omitempty" jsonschema:"refresh even if the data is within the cooldown"`
}

// RefreshOutput is the output schema for the refresh tool.
type RefreshOutput struct {
	Result     string `json:"result"`
	State      string `json:"state"`
	Generation uint64 `json:"generation,omitempty"`
}

// CancelOutput is the output schema for the cancel_refresh tool.
type CancelOutput struct {
	Cancelled bool `json:"cancelled"`
}

// StatusOutput describes the coordinator and the freshness of cached scopes.
type StatusOutput struct {
	State    string        `json:"state"`
	Pending  string        `json:"pending,omitempty"`
	Periodic string        `json:"periodic,omitempty"`
	Cooldown string        `json:"cooldown"`
	Interval string        `json:"interval"`
	Scopes   []ScopeOutput `json:"scopes"`
}

// ScopeOutput is the LastUpdated value of one cached scope.
type ScopeOutput struct {
	Scope       string `json:"scope"`
	LastUpdated string `json:"last_updated"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "refresh",
		Description: "Fetch fresh pull requests, workflow runs or saved search results from GitHub into the cache",
	}, s.handleRefresh)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cancel_refresh",
		Description: "Cancel the refresh in progress",
	}, s.handleCancelRefresh)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "refresh_status",
		Description: "Report the refresh state and when each cached scope was last updated",
	}, s.handleRefreshStatus)
}

// handleRefresh handles the refresh tool invocation.
// It returns once the request has been dispatched, queued or skipped.
func (s *Server) handleRefresh(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RefreshInput,
) (*mcp.CallToolResult, RefreshOutput, error) {
	kind, err := domain.ParseUpdateKind(input.Kind)
	if err != nil {
		return nil, RefreshOutput{}, err
	}
	params := domain.UpdateParameters{Kind: kind, Target: strings.TrimSpace(input.Target)}
	if params.Target == "" {
		return nil, RefreshOutput{}, fmt.Errorf("%w: target is required", domain.ErrInvalidInput)
	}

	// Requests from concurrent clients are serialized so a Started seen
	// below belongs to this call. Started is emitted synchronously while
	// RequestRefresh holds the gate; the first matching one is kept.
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	var generation atomic.Uint64
	id := s.ports.Refresh.Subscribe(func(n domain.Notification) {
		if n.Kind == domain.NotificationStarted && n.Parameters != nil &&
			n.Parameters.Kind == params.Kind && n.Parameters.Target == params.Target {
			generation.CompareAndSwap(0, n.Parameters.Generation)
		}
	})
	defer s.ports.Refresh.Unsubscribe(id)

	request := s.ports.Refresh.RequestRefresh
	if input.Force {
		request = s.ports.Refresh.ForceRefresh
	}
	if err := request(ctx, params); err != nil {
		return nil, RefreshOutput{}, err
	}

	state := s.ports.Refresh.State()
	out := RefreshOutput{State: state.String()}
	pending, queued := s.ports.Refresh.Pending()
	switch {
	// A periodic fetch of the same scope may start just before this request
	// is remembered; the request is then queued, not started.
	case queued && pending.Kind == params.Kind && pending.Target == params.Target:
		out.Result = resultQueued
	case generation.Load() != 0:
		out.Result = resultStarted
		out.Generation = generation.Load()
	case state == domain.StateIdle:
		out.Result = resultFresh
	default:
		out.Result = resultDropped
	}
	return nil, out, nil
}

// handleCancelRefresh handles the cancel_refresh tool invocation.
func (s *Server) handleCancelRefresh(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, CancelOutput, error) {
	return nil, CancelOutput{Cancelled: s.ports.Refresh.CancelInProgress()}, nil
}

// handleRefreshStatus handles the refresh_status tool invocation.
func (s *Server) handleRefreshStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, StatusOutput, error) {
	out, err := s.status(ctx)
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, out, nil
}

// status collects the coordinator state and the update records.
func (s *Server) status(ctx context.Context) (StatusOutput, error) {
	settings := s.ports.Refresh.Settings()
	out := StatusOutput{
		State:    s.ports.Refresh.State().String(),
		Cooldown: settings.Cooldown.String(),
		Interval: settings.Interval.String(),
		Scopes:   []ScopeOutput{},
	}
	if pending, ok := s.ports.Refresh.Pending(); ok {
		out.Pending = pending.String()
	}
	if settings.PeriodicEnabled() {
		out.Periodic = settings.Periodic.String()
	}

	if s.ports.Cache == nil {
		return out, nil
	}
	records, err := s.ports.Cache.UpdateRecords(ctx)
	if err != nil {
		return StatusOutput{}, fmt.Errorf("listing update records: %w", err)
	}
	for _, r := range records {
		out.Scopes = append(out.Scopes, ScopeOutput{
			Scope:       r.Scope,
			LastUpdated: r.LastUpdated.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}
