package engine

import "context"

// ActionRecorder receives every committed mutation for the local action
// journal. Implemented by journal.Journal; a nil recorder disables
// journaling. Recording failures are logged, never propagated - the journal
// is an audit trail, not a dependency of the mutation itself.
type ActionRecorder interface {
	RecordAction(ctx context.Context, action string, payload any) error
}
