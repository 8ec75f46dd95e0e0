package github

import (
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/prcache/internal/core/domain"
)

// RateLimitError represents a rate limit exceeded error with reset time.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
	Limit     int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// Is reports RateLimitError as domain.ErrRateLimited.
func (e *RateLimitError) Is(target error) bool {
	return target == domain.ErrRateLimited
}

// APIError represents a GitHub API error response.
type APIError struct {
	StatusCode int
	Message    string
	Operation  string
	URL        string
}

func (e *APIError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("github: %s: API error %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("github: %s: API error %d: %s (URL: %s)", e.Operation, e.StatusCode, e.Message, e.URL)
}

// Is maps HTTP status codes onto domain errors.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return target == domain.ErrAuthInvalid
	case http.StatusNotFound:
		return target == domain.ErrNotFound
	case http.StatusUnprocessableEntity:
		return target == domain.ErrInvalidInput
	}
	return false
}
