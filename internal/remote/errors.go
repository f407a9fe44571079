package remote

import (
	"errors"
	"fmt"
)

// RemoteFailure is the single failure surface of the coaching gateway. Any
// transport or server error on any operation collapses into it - the gateway
// never distinguishes network from 4xx from 5xx; that is the caller's
// concern, and in practice the caller's only move is rollback plus retry.
type RemoteFailure struct {
	// Operation names the gateway call that failed, e.g. "complete_standup".
	Operation string

	// Cause is the underlying transport or decode error.
	Cause error
}

// Error implements the error interface.
func (e *RemoteFailure) Error() string {
	return fmt.Sprintf("remote coach %s failed: %v", e.Operation, e.Cause)
}

// Unwrap exposes the cause for errors.Is/As chains.
func (e *RemoteFailure) Unwrap() error {
	return e.Cause
}

// IsRemoteFailure reports whether err is a RemoteFailure.
// Uses errors.As to handle wrapped errors.
func IsRemoteFailure(err error) bool {
	var rf *RemoteFailure
	return errors.As(err, &rf)
}

// failed wraps an underlying error with the operation name.
func failed(operation string, cause error) *RemoteFailure {
	return &RemoteFailure{Operation: operation, Cause: cause}
}
