// Package tui provides the interactive watch dashboard for prcache.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/prcache/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the dashboard.
type Ports struct {
	// Refresh coordinates refreshes and delivers notifications.
	Refresh driving.RefreshService

	// Cache reads the rows shown for the watched scope.
	Cache driving.CacheService

	// Settings is optional; it is only used to show the config path.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Refresh == nil {
		return ErrMissingRefreshService
	}
	if p.Cache == nil {
		return ErrMissingCacheService
	}
	return nil
}
