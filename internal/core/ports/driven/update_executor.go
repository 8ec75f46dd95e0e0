package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/prcache/internal/core/domain"
)

// UpdateExecutor performs the data fetch behind a refresh.
//
// The refresh coordinator calls Execute from its own goroutine and converts the
// returned error into exactly one outcome: nil is a success, an error observed
// after ctx was cancelled is a cancellation, anything else is a fetch error.
// Implementations must honour ctx cancellation cooperatively.
type UpdateExecutor interface {
	// Execute fetches the data identified by params and blocks until done.
	Execute(ctx context.Context, params domain.UpdateParameters) error

	// IsStale returns true if the scope of params was never updated or was
	// last updated more than cooldown ago.
	IsStale(ctx context.Context, params domain.UpdateParameters, cooldown time.Duration) bool

	// LastUpdated returns when the scope of params was last refreshed.
	// Returns domain.NeverUpdated if it never was.
	LastUpdated(ctx context.Context, params domain.UpdateParameters) time.Time

	// SetLastUpdated records when the scope of params was last refreshed.
	SetLastUpdated(ctx context.Context, params domain.UpdateParameters, at time.Time) error
}
