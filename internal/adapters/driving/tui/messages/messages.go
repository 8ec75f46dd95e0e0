// Package messages defines Bubbletea message types for the dashboard.
package messages

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/prcache/internal/core/domain"
)

// NotificationReceived carries a refresh notification into the update loop.
type NotificationReceived struct {
	Notification domain.Notification
}

// CacheLoaded carries the cached rows of the watched scope.
// Only the slice matching Params.Kind is set.
type CacheLoaded struct {
	Params       domain.UpdateParameters
	PullRequests []domain.PullRequest
	PipelineRuns []domain.PipelineRun
	WorkItems    []domain.WorkItem
	LastUpdated  time.Time
	Err          error
}

// ActionFailed reports a failed user action.
type ActionFailed struct {
	Action string
	Err    error
}

// WaitForNotification returns a command that delivers the next notification
// from ch. It returns nil once ch is closed.
func WaitForNotification(ch <-chan domain.Notification) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return NotificationReceived{Notification: n}
	}
}
