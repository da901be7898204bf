package events

import (
	"github.com/afisha-events/server/internal/domain/faults"
)

// State is the lifecycle state of an event. Transitions are one-directional:
// PENDING moves to PUBLISHED by admin approval or to CANCELED by admin
// rejection or initiator withdrawal; a canceled event can be resubmitted
// for review by its initiator.
type State string

const (
	StatePending   State = "PENDING"
	StatePublished State = "PUBLISHED"
	StateCanceled  State = "CANCELED"
)

func ParseState(value string) (State, error) {
	switch State(value) {
	case StatePending, StatePublished, StateCanceled:
		return State(value), nil
	default:
		return "", faults.Invalidf("unknown event state %q", value)
	}
}

// UserStateAction is a lifecycle action available to the event initiator.
type UserStateAction string

const (
	ActionSendToReview UserStateAction = "SEND_TO_REVIEW"
	ActionCancelReview UserStateAction = "CANCEL_REVIEW"
)

func ParseUserStateAction(value string) (UserStateAction, error) {
	switch UserStateAction(value) {
	case ActionSendToReview, ActionCancelReview:
		return UserStateAction(value), nil
	default:
		return "", faults.Conflictf("state action %q is not available to the initiator", value)
	}
}

// Apply returns the state the action moves the event into.
func (a UserStateAction) Apply() State {
	if a == ActionCancelReview {
		return StateCanceled
	}
	return StatePending
}

// AdminStateAction is a lifecycle action available to administrators.
type AdminStateAction string

const (
	ActionPublishEvent AdminStateAction = "PUBLISH_EVENT"
	ActionRejectEvent  AdminStateAction = "REJECT_EVENT"
)

func ParseAdminStateAction(value string) (AdminStateAction, error) {
	switch AdminStateAction(value) {
	case ActionPublishEvent, ActionRejectEvent:
		return AdminStateAction(value), nil
	default:
		return "", faults.Conflictf("state action %q is not available to administrators", value)
	}
}

// Apply returns the state the action moves the event into.
func (a AdminStateAction) Apply() State {
	if a == ActionRejectEvent {
		return StateCanceled
	}
	return StatePublished
}
