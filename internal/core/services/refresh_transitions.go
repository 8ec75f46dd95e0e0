package services

import "github.com/custodia-labs/prcache/internal/core/domain"

// trigger is an input to the refresh state machine.
type trigger int

const (
	triggerRequest trigger = iota
	triggerTick
	triggerOutcome
)

func (t trigger) String() string {
	switch t {
	case triggerRequest:
		return "request"
	case triggerTick:
		return "tick"
	case triggerOutcome:
		return "outcome"
	default:
		return "unknown"
	}
}

// effect is what the coordinator does after a transition.
type effect int

const (
	// effectNone ignores the trigger.
	effectNone effect = iota
	// effectDispatch dispatches the trigger's parameters.
	effectDispatch
	// effectRemember stores the trigger's parameters as the pending request.
	effectRemember
	// effectComplete emits the completed operation's outcome.
	effectComplete
	// effectCompleteAndDispatchPending emits the completed operation's
	// outcome and then dispatches the pending request.
	effectCompleteAndDispatchPending
)

// step is the result of a transition.
type step struct {
	next   domain.RefreshState
	effect effect
}

// transition computes the next state and the effect for a trigger.
//
//	state            | request                    | tick                     | outcome
//	Idle             | dispatch, Refreshing       | dispatch, PeriodicUpdate | ignored
//	Refreshing       | drop, or remember (queue)  | ignored                  | complete, Idle
//	PeriodicUpdating | remember, PendingRefresh   | ignored                  | complete, Idle
//	PendingRefresh   | remember (last write wins) | ignored                  | complete, dispatch pending, Refreshing
func transition(state domain.RefreshState, t trigger, onBusy domain.BusyPolicy) step {
	ignore := step{next: state, effect: effectNone}

	switch state {
	case domain.StateIdle:
		switch t {
		case triggerRequest:
			return step{next: domain.StateRefreshing, effect: effectDispatch}
		case triggerTick:
			return step{next: domain.StatePeriodicUpdating, effect: effectDispatch}
		}

	case domain.StateRefreshing:
		switch t {
		case triggerRequest:
			if onBusy == domain.BusyPolicyQueue {
				return step{next: domain.StatePendingRefresh, effect: effectRemember}
			}
		case triggerOutcome:
			return step{next: domain.StateIdle, effect: effectComplete}
		}

	case domain.StatePeriodicUpdating:
		switch t {
		case triggerRequest:
			return step{next: domain.StatePendingRefresh, effect: effectRemember}
		case triggerOutcome:
			return step{next: domain.StateIdle, effect: effectComplete}
		}

	case domain.StatePendingRefresh:
		switch t {
		case triggerRequest:
			return step{next: domain.StatePendingRefresh, effect: effectRemember}
		case triggerOutcome:
			return step{next: domain.StateRefreshing, effect: effectCompleteAndDispatchPending}
		}
	}

	return ignore
}
