// Package driving defines the interfaces the CLI, the TUI dashboard and the
// MCP server use to drive prcache.
//
// RefreshService is the refresh coordinator. CacheService and
// SavedSearchService read cached data and manage saved searches, and
// SettingsService reads and writes configuration.
//
// Implementations live in internal/core/services.
package driving
