package driving

import (
	"context"

	"github.com/custodia-labs/prcache/internal/core/domain"
)

// NotificationHandler receives refresh lifecycle notifications.
// Handlers are called synchronously in emission order and must not call back
// into RefreshService methods other than CancelInProgress before returning.
type NotificationHandler func(domain.Notification)

// SubscriptionID identifies a registered NotificationHandler.
type SubscriptionID uint64

// RefreshService coordinates on-demand and periodic cache refreshes.
type RefreshService interface {
	// RequestRefresh asks for params to be refreshed. It is a no-op if the
	// scope is still within its cooldown. Returns domain.ErrInvalidUpdateKind
	// for unrecognised kinds.
	RequestRefresh(ctx context.Context, params domain.UpdateParameters) error

	// ForceRefresh is RequestRefresh without the cooldown check.
	ForceRefresh(ctx context.Context, params domain.UpdateParameters) error

	// CancelInProgress cancels the in-flight fetch, if any.
	// Returns true if this call sent the cancellation signal.
	CancelInProgress() bool

	// StartPeriodic starts the background refresh loop.
	StartPeriodic()

	// StopPeriodic stops the background refresh loop.
	StopPeriodic()

	// Subscribe registers a notification handler.
	Subscribe(handler NotificationHandler) SubscriptionID

	// Unsubscribe removes a notification handler.
	Unsubscribe(id SubscriptionID)

	// State returns the current refresh state.
	State() domain.RefreshState

	// Pending returns the request remembered while busy, if any.
	Pending() (domain.UpdateParameters, bool)

	// ClearCache cancels in-flight work and removes all cached data.
	ClearCache(ctx context.Context) error

	// NotifyAccountChanged resets the cache after the GitHub account changed.
	NotifyAccountChanged(ctx context.Context) error

	// UpdateSettings applies new cooldown, interval, busy policy and periodic target.
	UpdateSettings(ctx context.Context, settings domain.RefreshSettings) error

	// Settings returns the settings in effect.
	Settings() domain.RefreshSettings
}
