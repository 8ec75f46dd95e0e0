package tui

import "errors"

// ErrMissingRefreshService is returned when the refresh service is not provided.
var ErrMissingRefreshService = errors.New("tui: refresh service is required")

// ErrMissingCacheService is returned when the cache service is not provided.
var ErrMissingCacheService = errors.New("tui: cache service is required")

// ErrNoTarget is reported when a refresh is requested without a periodic target.
var ErrNoTarget = errors.New("no periodic target configured")
