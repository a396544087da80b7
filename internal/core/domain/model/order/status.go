package order

import (
	"fmt"

	"orderhub/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
// Happy path:
//
//	new ──> confirmed ──> paid ──> fulfilled ──> completed
//
// Every non-terminal state may also move to cancelled or failed, new/confirmed/paid
// may be put on_hold, and on_hold may resume to new, confirmed or paid. failed can
// only go back to new or on_hold. completed and cancelled are terminal. The exact
// table lives in AllowedTargets.
type Status int

const (
	// Unknown is the zero value and never a valid status.
	Unknown Status = iota
	New
	Confirmed
	Paid
	Fulfilled
	Completed
	Cancelled
	OnHold
	Failed
)

// All returns every valid status in declaration order.
func All() []Status {
	return []Status{New, Confirmed, Paid, Fulfilled, Completed, Cancelled, OnHold, Failed}
}

func getStatusCodes() map[Status]string {
	return map[Status]string{
		New:       "new",
		Confirmed: "confirmed",
		Paid:      "paid",
		Fulfilled: "fulfilled",
		Completed: "completed",
		Cancelled: "cancelled",
		OnHold:    "on_hold",
		Failed:    "failed",
	}
}

// ParseStatus converts a persisted or wire code ("on_hold") into a Status.
func ParseStatus(code string) (Status, error) {
	for status, c := range getStatusCodes() {
		if c == code {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status is invalid", fmt.Errorf("%q is not a valid status", code),
	)
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if _, ok := getStatusCodes()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire code, or "unknown" for invalid values.
func (s Status) String() string {
	if code, ok := getStatusCodes()[s]; ok {
		return code
	}
	return "unknown"
}

// AllowedTargets returns the statuses reachable from s in one transition.
func (s Status) AllowedTargets() []Status {
	switch s {
	case New:
		return []Status{Confirmed, Cancelled, OnHold, Failed}
	case Confirmed:
		return []Status{Paid, Cancelled, OnHold, Failed}
	case Paid:
		return []Status{Fulfilled, Cancelled, OnHold, Failed}
	case Fulfilled:
		return []Status{Completed, Cancelled, Failed}
	case OnHold:
		return []Status{New, Confirmed, Paid, Cancelled, Failed}
	case Failed:
		return []Status{New, OnHold}
	case Completed, Cancelled, Unknown:
		return nil
	default:
		return nil
	}
}

// CanTransitionTo reports whether target is in the allowed set of s.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range s.AllowedTargets() {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s.Validate() == nil && len(s.AllowedTargets()) == 0
}

// DisplayName returns a human readable label.
func (s Status) DisplayName() string {
	switch s {
	case New:
		return "New"
	case Confirmed:
		return "Confirmed"
	case Paid:
		return "Paid"
	case Fulfilled:
		return "Fulfilled"
	case Completed:
		return "Completed"
	case Cancelled:
		return "Cancelled"
	case OnHold:
		return "On Hold"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// DisplayColor returns the badge color used by admin front ends.
func (s Status) DisplayColor() string {
	switch s {
	case New:
		return "gray"
	case Confirmed:
		return "blue"
	case Paid:
		return "indigo"
	case Fulfilled:
		return "purple"
	case Completed:
		return "green"
	case Cancelled:
		return "red"
	case OnHold:
		return "yellow"
	case Failed:
		return "orange"
	default:
		return "gray"
	}
}

// Transition is a (source, target) pair, used as the guard table key.
type Transition struct {
	From Status
	To   Status
}

func (t Transition) String() string {
	return t.From.String() + "->" + t.To.String()
}
