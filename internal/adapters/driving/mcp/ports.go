package mcp

import (
	"github.com/custodia-labs/prcache/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Refresh coordinates cache refreshes.
	Refresh driving.RefreshService

	// Cache reads cached data. Without it the data resources are empty.
	Cache driving.CacheService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Refresh == nil {
		return ErrMissingRefreshService
	}
	return nil
}
