package driven

import (
	"context"

	"github.com/custodia-labs/prcache/internal/core/domain"
)

// TokenProvider provides access tokens for authenticated GitHub API calls.
type TokenProvider interface {
	// GetToken returns the access token.
	// Returns domain.ErrAuthRequired if no token is configured.
	GetToken(ctx context.Context) (string, error)

	// AuthMethod returns the authentication method.
	AuthMethod() domain.AuthMethod

	// IsAuthenticated returns true if a token is available.
	IsAuthenticated() bool
}
