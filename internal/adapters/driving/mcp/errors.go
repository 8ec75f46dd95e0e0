// Package mcp provides an MCP (Model Context Protocol) server adapter for prcache.
// It lets AI assistants read the cache and trigger refreshes.
package mcp

import "errors"

// ErrMissingRefreshService is returned when the refresh service is not provided.
var ErrMissingRefreshService = errors.New("mcp: refresh service is required")
