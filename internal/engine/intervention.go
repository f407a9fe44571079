package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/lifesprint/sensai/internal/cache"
	"github.com/lifesprint/sensai/internal/entity"
	"github.com/lifesprint/sensai/internal/remote"
)

// OverridePolicy decides which interventions expose the override action.
// The urgency floor is configurable rather than hard-coded pending product
// clarification; the default reserves override for high urgency.
type OverridePolicy struct {
	// MinOverrideUrgency is the lowest urgency that may be overridden.
	MinOverrideUrgency entity.Urgency
}

// DefaultOverridePolicy reserves override for high-urgency interventions.
func DefaultOverridePolicy() OverridePolicy {
	return OverridePolicy{MinOverrideUrgency: entity.UrgencyHigh}
}

// allows reports whether an intervention of the given urgency may be
// overridden under this policy.
func (p OverridePolicy) allows(u entity.Urgency) bool {
	rank := map[entity.Urgency]int{
		entity.UrgencyLow:    1,
		entity.UrgencyMedium: 2,
		entity.UrgencyHigh:   3,
	}
	floor, ok := rank[p.MinOverrideUrgency]
	if !ok {
		floor = rank[entity.UrgencyHigh]
	}
	r, ok := rank[u]
	if !ok {
		// positive (and anything unranked) is never overridable
		return false
	}
	return r >= floor
}

// Interventions manages the accept/override/defer/dismiss contract.
//
// The cache's KindInterventions slot holds every fetched intervention;
// Active and History partition it on the Acknowledged flag. Dismissal is a
// local soft hide - the record is dropped from the slot without touching
// Acknowledged, and a future fetch may resurrect it.
type Interventions struct {
	cache    *cache.Cache
	coach    remote.Coach
	recorder ActionRecorder
	policy   OverridePolicy
	now      func() time.Time
}

// InterventionOption configures an Interventions coordinator.
type InterventionOption func(*Interventions)

// WithOverridePolicy replaces the default urgency floor.
func WithOverridePolicy(p OverridePolicy) InterventionOption {
	return func(i *Interventions) { i.policy = p }
}

// WithInterventionClock overrides the timestamp source. Tests pin it.
func WithInterventionClock(now func() time.Time) InterventionOption {
	return func(i *Interventions) { i.now = now }
}

// WithInterventionRecorder wires the action journal.
func WithInterventionRecorder(r ActionRecorder) InterventionOption {
	return func(i *Interventions) { i.recorder = r }
}

// NewInterventions creates the intervention coordinator.
func NewInterventions(ca *cache.Cache, coach remote.Coach, opts ...InterventionOption) *Interventions {
	i := &Interventions{
		cache:  ca,
		coach:  coach,
		policy: DefaultOverridePolicy(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// all returns the full cached intervention list.
func (i *Interventions) all() []entity.Intervention {
	list, _ := cache.GetAs[[]entity.Intervention](i.cache, entity.KindInterventions)
	return list
}

// Active returns the unacknowledged interventions.
func (i *Interventions) Active() []entity.Intervention {
	var active []entity.Intervention
	for _, intv := range i.all() {
		if !intv.Acknowledged {
			active = append(active, intv)
		}
	}
	return active
}

// History returns the acknowledged interventions.
func (i *Interventions) History() []entity.Intervention {
	var history []entity.Intervention
	for _, intv := range i.all() {
		if intv.Acknowledged {
			history = append(history, intv)
		}
	}
	return history
}

// find returns the cached intervention with the given ID.
func (i *Interventions) find(id string) (entity.Intervention, bool) {
	for _, intv := range i.all() {
		if intv.ID == id {
			return intv, true
		}
	}
	return entity.Intervention{}, false
}

// replace swaps record into list by ID.
func replace(list []entity.Intervention, record entity.Intervention) []entity.Intervention {
	out := make([]entity.Intervention, len(list))
	copy(out, list)
	for idx := range out {
		if out[idx].ID == record.ID {
			out[idx] = record
		}
	}
	return out
}

// Acknowledge transitions an unacknowledged intervention exactly once into
// history, recording how it was handled. Idempotent at the client boundary:
// a repeat call on an already acknowledged intervention returns the existing
// record without re-invoking the gateway.
//
// Policy: override requires the urgency floor (high by default); defer is
// disallowed for positive urgency - celebrations have no "later". On remote
// failure the intervention rolls back to active, unacknowledged.
func (i *Interventions) Acknowledge(ctx context.Context, id string, action entity.AckAction, reason string) (entity.Intervention, error) {
	if !entity.ValidAckActions[action] {
		return entity.Intervention{}, &InvalidTransitionError{
			Code:    ErrCodeActionNotAllowed,
			Op:      "acknowledge_intervention",
			Subject: id,
			Message: "unknown acknowledgement action " + string(action),
		}
	}

	intv, ok := i.find(id)
	if !ok {
		return entity.Intervention{}, &InvalidTransitionError{
			Code:    ErrCodeUnknownSubject,
			Op:      "acknowledge_intervention",
			Subject: id,
			Message: "intervention not present",
		}
	}

	if intv.Acknowledged {
		slog.Debug("intervention already acknowledged, skipping (idempotent)", "id", id)
		return intv, nil
	}

	if action == entity.ActionOverride && !i.policy.allows(intv.Urgency) {
		return entity.Intervention{}, &InvalidTransitionError{
			Code:    ErrCodeActionNotAllowed,
			Op:      "override_intervention",
			Subject: id,
			From:    string(intv.Urgency),
			Message: "override is reserved for urgency " + string(i.policy.MinOverrideUrgency) + " and above",
		}
	}
	if action == entity.ActionDefer && intv.Urgency == entity.UrgencyPositive {
		return entity.Intervention{}, &InvalidTransitionError{
			Code:    ErrCodeActionNotAllowed,
			Op:      "defer_intervention",
			Subject: id,
			From:    string(intv.Urgency),
			Message: "celebrations cannot be deferred",
		}
	}

	acknowledgedAt := i.now()
	token, err := i.cache.OptimisticApply(entity.KindInterventions, func(current any) any {
		list, _ := current.([]entity.Intervention)
		speculative := intv
		speculative.Acknowledged = true
		speculative.AcknowledgedAt = &acknowledgedAt
		speculative.Overridden = action == entity.ActionOverride
		speculative.OverrideReason = reason
		return replace(list, speculative)
	})
	if err != nil {
		return entity.Intervention{}, err
	}

	record, err := i.coach.AcknowledgeIntervention(ctx, id, action, reason)
	if err != nil {
		i.cache.Rollback(token)
		slog.Error("intervention acknowledgement failed, restored to active",
			"id", id, "action", action, "error", err)
		return entity.Intervention{}, err
	}

	i.cache.Commit(entity.KindInterventions, replace(i.all(), record))
	i.record(ctx, "acknowledge_intervention", record)
	slog.Info("intervention acknowledged", "id", id, "action", action, "overridden", record.Overridden)
	return record, nil
}

// Dismiss soft-hides a nudge locally without setting acknowledged. Only
// nudge-type interventions may be dismissed - alerts and warnings must be
// acknowledged. A dismissed nudge may reappear on the next fetch if the
// server still considers it active. Acknowledged records are immutable, so
// dismissing one is a no-op.
//
// While an acknowledgement is awaiting the gateway the slot is guarded by
// its rollback token; a dismissal attempted in that window fails with
// ConcurrentMutationError rather than stranding the in-flight rollback.
func (i *Interventions) Dismiss(id string) error {
	intv, ok := i.find(id)
	if !ok {
		return &InvalidTransitionError{
			Code:    ErrCodeUnknownSubject,
			Op:      "dismiss_intervention",
			Subject: id,
			Message: "intervention not present",
		}
	}

	if intv.Acknowledged {
		slog.Debug("intervention already acknowledged, dismiss is a no-op", "id", id)
		return nil
	}

	if intv.Type != entity.InterventionNudge {
		return &InvalidTransitionError{
			Code:    ErrCodeActionNotAllowed,
			Op:      "dismiss_intervention",
			Subject: id,
			From:    string(intv.Type),
			Message: "only nudges can be dismissed; acknowledge instead",
		}
	}

	err := i.cache.Update(entity.KindInterventions, func(current any) any {
		list, _ := current.([]entity.Intervention)
		remaining := make([]entity.Intervention, 0, len(list))
		for _, cur := range list {
			if cur.ID != id {
				remaining = append(remaining, cur)
			}
		}
		return remaining
	})
	if err != nil {
		return err
	}
	slog.Info("nudge dismissed locally", "id", id)
	return nil
}

// record appends to the action journal when one is wired.
func (i *Interventions) record(ctx context.Context, action string, payload any) {
	if i.recorder == nil {
		return
	}
	if err := i.recorder.RecordAction(ctx, action, payload); err != nil {
		slog.Error("journal record failed", "action", action, "error", err)
	}
}
