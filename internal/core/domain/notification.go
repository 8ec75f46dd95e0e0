package domain

import "fmt"

// NotificationKind identifies a refresh lifecycle event.
type NotificationKind int

// Notification kinds.
const (
	// NotificationStarted is emitted when a fetch is dispatched.
	NotificationStarted NotificationKind = iota

	// NotificationUpdated is emitted when a fetch completes successfully.
	NotificationUpdated

	// NotificationCleared is emitted when the cache is cleared.
	NotificationCleared

	// NotificationError is emitted when a fetch fails.
	NotificationError

	// NotificationCancel is emitted when a fetch is cancelled.
	NotificationCancel

	// NotificationAccount is emitted when the GitHub account changes.
	NotificationAccount
)

// String returns the string representation.
func (k NotificationKind) String() string {
	switch k {
	case NotificationStarted:
		return "started"
	case NotificationUpdated:
		return "updated"
	case NotificationCleared:
		return "cleared"
	case NotificationError:
		return "error"
	case NotificationCancel:
		return "cancel"
	case NotificationAccount:
		return "account"
	default:
		return fmt.Sprintf("NotificationKind(%d)", int(k))
	}
}

// Notification describes a refresh lifecycle event delivered to subscribers.
type Notification struct {
	// Kind is the event kind.
	Kind NotificationKind

	// Err is set for NotificationError.
	Err error

	// Parameters identifies the operation, if any.
	Parameters *UpdateParameters
}

// String returns a human-readable form.
func (n Notification) String() string {
	s := n.Kind.String()
	if n.Parameters != nil {
		s += " " + n.Parameters.String()
	}
	if n.Err != nil {
		s += ": " + n.Err.Error()
	}
	return s
}

// OutcomeStatus is the terminal status of one Execute call.
type OutcomeStatus int

// Outcome statuses.
const (
	OutcomeSuccess OutcomeStatus = iota
	OutcomeError
	OutcomeCancelled
)

// String returns the string representation.
func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeSuccess:
		return "success"
	case OutcomeError:
		return "error"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("OutcomeStatus(%d)", int(s))
	}
}

// Outcome is the single terminal result reported for a dispatched fetch.
type Outcome struct {
	Status OutcomeStatus
	Err    error
}

// Notification converts the outcome into the notification announcing it.
func (o Outcome) Notification(params UpdateParameters) Notification {
	n := Notification{Parameters: &params}
	switch o.Status {
	case OutcomeSuccess:
		n.Kind = NotificationUpdated
	case OutcomeCancelled:
		n.Kind = NotificationCancel
	default:
		n.Kind = NotificationError
		n.Err = o.Err
	}
	return n
}
