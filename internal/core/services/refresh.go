package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/core/ports/driven"
	"github.com/custodia-labs/prcache/internal/core/ports/driving"
	"github.com/custodia-labs/prcache/internal/logger"
)

// Ensure RefreshCoordinator implements the interface.
var _ driving.RefreshService = (*RefreshCoordinator)(nil)

// RefreshCoordinator decides when cached data is fetched.
//
// Every state-affecting call passes through a gate of capacity one, so state
// transitions are totally ordered. The gate is held while a transition is
// decided and a fetch is started, never for the duration of the fetch. At
// most one fetch is in flight; requests arriving meanwhile are coalesced into
// a single pending request or dropped according to the busy policy.
type RefreshCoordinator struct {
	executor driven.UpdateExecutor
	cache    driven.CacheStore
	updates  driven.UpdateStateStore
	log      *logger.Logger

	gate *semaphore.Weighted

	// Guarded by gate.
	state      domain.RefreshState
	pending    *domain.UpdateParameters
	inflight   domain.UpdateParameters
	periodic   bool
	settings   domain.RefreshSettings
	generation uint64
	closed     bool

	// Written under gate, read anywhere.
	active atomic.Pointer[cancellationHandle]

	notifier  notifier
	scheduler *PeriodicScheduler

	baseCtx context.Context
	stop    context.CancelFunc
	fetches sync.WaitGroup
}

// NewRefreshCoordinator creates a coordinator in the idle state.
// The cache and update stores are only used by ClearCache and
// NotifyAccountChanged and may be nil.
func NewRefreshCoordinator(
	executor driven.UpdateExecutor,
	cache driven.CacheStore,
	updates driven.UpdateStateStore,
	settings domain.RefreshSettings,
	log *logger.Logger,
) *RefreshCoordinator {
	if log == nil {
		log = logger.Default()
	}
	if !settings.OnBusy.IsValid() {
		settings.OnBusy = domain.BusyPolicyDrop
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &RefreshCoordinator{
		executor: executor,
		cache:    cache,
		updates:  updates,
		log:      log.Named("refresh"),
		gate:     semaphore.NewWeighted(1),
		state:    domain.StateIdle,
		settings: settings,
		baseCtx:  ctx,
		stop:     cancel,
	}
	c.scheduler = NewPeriodicScheduler(settings.Interval, c.tick, log)
	return c
}

// RequestRefresh asks for params to be refreshed.
//
// Nothing happens if the scope was refreshed within the cooldown. Otherwise
// the request is dispatched, remembered as the pending request, or dropped,
// depending on the current state.
func (c *RefreshCoordinator) RequestRefresh(ctx context.Context, params domain.UpdateParameters) error {
	return c.request(ctx, params, false)
}

// ForceRefresh is RequestRefresh without the cooldown check. The busy policy
// still applies.
func (c *RefreshCoordinator) ForceRefresh(ctx context.Context, params domain.UpdateParameters) error {
	return c.request(ctx, params, true)
}

func (c *RefreshCoordinator) request(ctx context.Context, params domain.UpdateParameters, force bool) error {
	if err := params.Validate(); err != nil {
		return err
	}
	params.Generation = 0

	if err := c.gate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.gate.Release(1)

	if c.closed {
		return domain.ErrCoordinatorClosed
	}

	if !force && !c.executor.IsStale(ctx, params, c.settings.Cooldown) {
		c.log.Debug("%s is fresh (cooldown %s), skipping", params, c.settings.Cooldown)
		return nil
	}

	c.apply(triggerRequest, params)
	return nil
}

// PeriodicTick runs one periodic housekeeping refresh if nothing is in flight.
// It is not cooldown gated.
func (c *RefreshCoordinator) PeriodicTick(ctx context.Context) error {
	if err := c.gate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.gate.Release(1)

	if c.closed {
		return domain.ErrCoordinatorClosed
	}

	params := c.settings.Periodic
	if err := params.Validate(); err != nil {
		return fmt.Errorf("periodic refresh: %w", err)
	}
	if params.Target == "" {
		c.log.Debug("periodic refresh has no target, skipping")
		return nil
	}

	c.apply(triggerTick, params)
	return nil
}

// tick is the scheduler action.
func (c *RefreshCoordinator) tick() error {
	return c.PeriodicTick(c.baseCtx)
}

// apply runs a request or tick transition. Caller must hold the gate.
func (c *RefreshCoordinator) apply(t trigger, params domain.UpdateParameters) {
	st := transition(c.state, t, c.settings.OnBusy)

	switch st.effect {
	case effectDispatch:
		c.log.Debug("%s: %s -> %s, dispatching %s", t, c.state, st.next, params)
		c.state = st.next
		c.dispatch(params)

	case effectRemember:
		if c.pending != nil {
			c.log.Debug("%s: replacing pending %s with %s", t, *c.pending, params)
		} else {
			c.log.Debug("%s: %s -> %s, remembering %s", t, c.state, st.next, params)
		}
		c.state = st.next
		c.pending = &params

	default:
		c.log.Debug("%s: ignored in state %s (%s in flight)", t, c.state, c.inflight)
	}
}

// dispatch starts a fetch for params. Caller must hold the gate.
func (c *RefreshCoordinator) dispatch(params domain.UpdateParameters) {
	c.generation++
	params.Generation = c.generation

	h := newCancellationHandle(c.baseCtx, params.Generation)
	c.active.Store(h)
	c.inflight = params
	c.periodic = c.state == domain.StatePeriodicUpdating

	c.notifier.emit(domain.Notification{Kind: domain.NotificationStarted, Parameters: &params})

	c.fetches.Add(1)
	go c.run(h, params)
}

// run executes a dispatched fetch and reports its outcome.
func (c *RefreshCoordinator) run(h *cancellationHandle, params domain.UpdateParameters) {
	defer c.fetches.Done()

	err := c.executor.Execute(h.ctx, params)
	c.onOutcome(h, outcomeOf(err, h))
}

// outcomeOf converts the result of Execute into an outcome.
// A cancelled handle always yields Cancelled, even if Execute returned nil.
func outcomeOf(err error, h *cancellationHandle) domain.Outcome {
	switch {
	case h.Cancelled() || errors.Is(err, context.Canceled):
		return domain.Outcome{Status: domain.OutcomeCancelled, Err: err}
	case err == nil:
		return domain.Outcome{Status: domain.OutcomeSuccess}
	default:
		return domain.Outcome{Status: domain.OutcomeError, Err: err}
	}
}

// onOutcome completes the fetch owned by h.
//
// The notification for the completed fetch and the dispatch of the pending
// request happen in the same gated section.
func (c *RefreshCoordinator) onOutcome(h *cancellationHandle, outcome domain.Outcome) {
	// Background never fails to acquire; an outcome must not be lost.
	_ = c.gate.Acquire(context.Background(), 1)
	defer c.gate.Release(1)

	if c.active.Load() != h {
		c.log.Warn("ignoring %s outcome of superseded fetch (generation %d)", outcome.Status, h.generation)
		return
	}

	params := c.inflight
	st := transition(c.state, triggerOutcome, c.settings.OnBusy)
	if st.effect == effectNone {
		c.log.Warn("ignoring %s outcome in state %s", outcome.Status, c.state)
		return
	}

	c.active.Store(nil)
	h.release()

	next := st.next
	var pending *domain.UpdateParameters
	if st.effect == effectCompleteAndDispatchPending {
		pending, c.pending = c.pending, nil
		if pending == nil || c.closed {
			next = domain.StateIdle
		}
	}

	c.log.Debug("outcome %s for %s: %s -> %s", outcome.Status, params, c.state, next)
	c.state = next
	c.inflight = domain.UpdateParameters{}
	c.periodic = false

	if outcome.Status == domain.OutcomeError {
		c.log.Warn("refresh of %s failed: %v", params, outcome.Err)
	}
	c.notifier.emit(outcome.Notification(params))

	if next == domain.StateRefreshing && pending != nil {
		c.dispatch(*pending)
	}
}

// CancelInProgress cancels the in-flight fetch. The state changes when the
// fetch reports its cancellation. Returns true if this call sent the signal.
func (c *RefreshCoordinator) CancelInProgress() bool {
	h := c.active.Load()
	if h == nil {
		return false
	}
	if !h.Cancel() {
		return false
	}
	c.log.Info("cancelling fetch generation %d", h.generation)
	return true
}

// ClearCache cancels the in-flight fetch, drops the pending request and
// removes all cached data. Subscribers receive a Cleared notification.
func (c *RefreshCoordinator) ClearCache(ctx context.Context) error {
	return c.reset(ctx, domain.NotificationCleared)
}

// NotifyAccountChanged discards the cached data of the previous account.
// Subscribers receive an Account notification.
func (c *RefreshCoordinator) NotifyAccountChanged(ctx context.Context) error {
	return c.reset(ctx, domain.NotificationAccount)
}

func (c *RefreshCoordinator) reset(ctx context.Context, kind domain.NotificationKind) error {
	if err := c.gate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.gate.Release(1)

	if h := c.active.Load(); h != nil {
		h.Cancel()
	}
	if c.state == domain.StatePendingRefresh {
		c.log.Debug("dropping pending %s", *c.pending)
		c.pending = nil
		// The fetch in flight keeps its own state until its outcome arrives.
		c.state = domain.StateRefreshing
		if c.periodic {
			c.state = domain.StatePeriodicUpdating
		}
	}

	var errs []error
	if c.cache != nil {
		if err := c.cache.Clear(ctx); err != nil {
			errs = append(errs, fmt.Errorf("clear cache: %w", err))
		}
	}
	if c.updates != nil {
		if err := c.updates.Clear(ctx); err != nil {
			errs = append(errs, fmt.Errorf("clear update records: %w", err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.notifier.emit(domain.Notification{Kind: kind})
	return nil
}

// StartPeriodic starts the periodic refresh loop.
func (c *RefreshCoordinator) StartPeriodic() {
	c.scheduler.Start()
}

// StopPeriodic stops the periodic refresh loop.
func (c *RefreshCoordinator) StopPeriodic() {
	c.scheduler.Stop()
}

// UpdateSettings replaces the settings. A running periodic loop is restarted
// if the interval changed.
func (c *RefreshCoordinator) UpdateSettings(ctx context.Context, settings domain.RefreshSettings) error {
	if !settings.OnBusy.IsValid() {
		settings.OnBusy = domain.BusyPolicyDrop
	}

	if err := c.gate.Acquire(ctx, 1); err != nil {
		return err
	}
	c.settings = settings
	c.gate.Release(1)

	c.scheduler.SetInterval(settings.Interval)
	return nil
}

// Settings returns the current settings.
func (c *RefreshCoordinator) Settings() domain.RefreshSettings {
	_ = c.gate.Acquire(context.Background(), 1)
	defer c.gate.Release(1)
	return c.settings
}

// Subscribe registers a notification handler.
func (c *RefreshCoordinator) Subscribe(handler driving.NotificationHandler) driving.SubscriptionID {
	return c.notifier.subscribe(handler)
}

// Unsubscribe removes a notification handler.
func (c *RefreshCoordinator) Unsubscribe(id driving.SubscriptionID) {
	c.notifier.unsubscribe(id)
}

// State returns the current state.
func (c *RefreshCoordinator) State() domain.RefreshState {
	_ = c.gate.Acquire(context.Background(), 1)
	defer c.gate.Release(1)
	return c.state
}

// Pending returns the pending request, if any.
func (c *RefreshCoordinator) Pending() (domain.UpdateParameters, bool) {
	_ = c.gate.Acquire(context.Background(), 1)
	defer c.gate.Release(1)
	if c.pending == nil {
		return domain.UpdateParameters{}, false
	}
	return *c.pending, true
}

// Close stops the periodic loop, cancels the in-flight fetch and waits for it
// to report. Teardown problems are logged, never returned.
func (c *RefreshCoordinator) Close() error {
	c.scheduler.Close()

	_ = c.gate.Acquire(context.Background(), 1)
	if c.closed {
		c.gate.Release(1)
		return nil
	}
	c.closed = true
	if h := c.active.Load(); h != nil {
		h.Cancel()
	}
	c.gate.Release(1)

	c.stop()
	c.fetches.Wait()

	if state := c.State(); state != domain.StateIdle {
		c.log.Warn("closed in state %s", state)
	}
	return nil
}
