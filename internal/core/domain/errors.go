package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Refresh Errors.

	// ErrInvalidUpdateKind indicates update parameters carry an unrecognised kind.
	// It is a wiring bug and is returned to the caller rather than reported as an outcome.
	ErrInvalidUpdateKind = errors.New("invalid update kind")

	// ErrCoordinatorClosed indicates the refresh coordinator has been closed.
	ErrCoordinatorClosed = errors.New("refresh coordinator closed")

	// ErrSourceUnavailable indicates no data source is configured for an update kind.
	ErrSourceUnavailable = errors.New("data source unavailable")

	// GitHub Errors.

	// ErrAuthRequired indicates no GitHub token is configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates GitHub rejected the token.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
