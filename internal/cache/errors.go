package cache

import (
	"errors"
	"fmt"

	"github.com/lifesprint/sensai/internal/entity"
)

// ConcurrentMutationError reports that an optimistic mutation was attempted
// on an entity kind while another was already in flight. Recoverable: the
// caller re-issues after the first mutation resolves.
type ConcurrentMutationError struct {
	Kind entity.Kind
}

// Error implements the error interface.
func (e *ConcurrentMutationError) Error() string {
	return fmt.Sprintf("concurrent mutation on %q: an optimistic mutation is already in flight", e.Kind)
}

// IsConcurrentMutation reports whether err is a ConcurrentMutationError.
// Uses errors.As to handle wrapped errors.
func IsConcurrentMutation(err error) bool {
	var ce *ConcurrentMutationError
	return errors.As(err, &ce)
}

// UnknownKindError reports a kind outside entity.ValidKinds. Always a
// programming error, never retryable.
type UnknownKindError struct {
	Kind entity.Kind
}

// Error implements the error interface.
func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown entity kind %q", e.Kind)
}
