package engine

import (
	"errors"
	"fmt"
)

// TransitionErrorCode categorizes rejected transitions.
type TransitionErrorCode string

const (
	// ErrCodeNotStarted indicates a completion was attempted with no active
	// in_progress record.
	ErrCodeNotStarted TransitionErrorCode = "NOT_STARTED"

	// ErrCodeAlreadyTerminal indicates the subject already reached a terminal
	// state (completed or skipped) and admits no further transition.
	ErrCodeAlreadyTerminal TransitionErrorCode = "ALREADY_TERMINAL"

	// ErrCodeUnknownSubject indicates the referenced ceremony, standup, or
	// intervention is not present in the cache.
	ErrCodeUnknownSubject TransitionErrorCode = "UNKNOWN_SUBJECT"

	// ErrCodeActionNotAllowed indicates the action is not valid for the
	// subject's current attributes (override below the urgency floor, defer
	// on a celebration, dismiss on a non-nudge).
	ErrCodeActionNotAllowed TransitionErrorCode = "ACTION_NOT_ALLOWED"
)

// InvalidTransitionError reports a state-machine transition that is not
// valid from the current state. Always a programming/UI error, never
// retryable, and never the result of a network call - the transition is
// rejected before the gateway is touched.
type InvalidTransitionError struct {
	// Code identifies the rejection category.
	Code TransitionErrorCode

	// Op names the attempted operation, e.g. "complete_planning".
	Op string

	// Subject identifies what the transition targeted (ceremony type,
	// standup ID, intervention ID).
	Subject string

	// From is the state the subject was actually in.
	From string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	if e.From != "" {
		return fmt.Sprintf("%s: %s on %s (state %s): %s", e.Code, e.Op, e.Subject, e.From, e.Message)
	}
	return fmt.Sprintf("%s: %s on %s: %s", e.Code, e.Op, e.Subject, e.Message)
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
// Uses errors.As to handle wrapped errors.
func IsInvalidTransition(err error) bool {
	var te *InvalidTransitionError
	return errors.As(err, &te)
}

// notStarted builds the rejection for completing something never started.
func notStarted(op, subject, from string) *InvalidTransitionError {
	return &InvalidTransitionError{
		Code:    ErrCodeNotStarted,
		Op:      op,
		Subject: subject,
		From:    from,
		Message: "no in-progress record to complete",
	}
}

// alreadyTerminal builds the rejection for re-transitioning a terminal record.
func alreadyTerminal(op, subject, from string) *InvalidTransitionError {
	return &InvalidTransitionError{
		Code:    ErrCodeAlreadyTerminal,
		Op:      op,
		Subject: subject,
		From:    from,
		Message: "state is terminal",
	}
}
