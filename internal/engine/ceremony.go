package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/lifesprint/sensai/internal/cache"
	"github.com/lifesprint/sensai/internal/entity"
	"github.com/lifesprint/sensai/internal/feed"
	"github.com/lifesprint/sensai/internal/remote"
)

// Ceremonies is the sprint ceremony state machine. One instance per session.
//
// The ceremony list for the current sprint lives in the cache under
// entity.KindCeremonies; all writes go through the optimistic
// apply/commit/rollback contract, so a racing second mutation is rejected
// with ConcurrentMutationError instead of interleaving.
type Ceremonies struct {
	cache    *cache.Cache
	coach    remote.Coach
	feed     *feed.Feed
	recorder ActionRecorder
	now      func() time.Time
}

// CeremonyOption configures a Ceremonies coordinator.
type CeremonyOption func(*Ceremonies)

// WithCeremonyClock overrides the timestamp source. Tests pin it.
func WithCeremonyClock(now func() time.Time) CeremonyOption {
	return func(c *Ceremonies) { c.now = now }
}

// WithCeremonyRecorder wires the action journal.
func WithCeremonyRecorder(r ActionRecorder) CeremonyOption {
	return func(c *Ceremonies) { c.recorder = r }
}

// NewCeremonies creates the ceremony coordinator.
func NewCeremonies(ca *cache.Cache, coach remote.Coach, f *feed.Feed, opts ...CeremonyOption) *Ceremonies {
	c := &Ceremonies{
		cache: ca,
		coach: coach,
		feed:  f,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns the current sprint's ceremonies.
func (c *Ceremonies) List() []entity.SprintCeremony {
	list, _ := cache.GetAs[[]entity.SprintCeremony](c.cache, entity.KindCeremonies)
	return list
}

// find returns the ceremony of the given type, if present.
func (c *Ceremonies) find(ceremonyType entity.CeremonyType) (entity.SprintCeremony, bool) {
	for _, cer := range c.List() {
		if cer.Type == ceremonyType {
			return cer, true
		}
	}
	return entity.SprintCeremony{}, false
}

// merge replaces (or appends) the ceremony of record's type in list.
func merge(list []entity.SprintCeremony, record entity.SprintCeremony) []entity.SprintCeremony {
	out := make([]entity.SprintCeremony, 0, len(list)+1)
	replaced := false
	for _, cer := range list {
		if cer.Type == record.Type {
			out = append(out, record)
			replaced = true
			continue
		}
		out = append(out, cer)
	}
	if !replaced {
		out = append(out, record)
	}
	return out
}

// Start opens a ceremony. Valid only from not_started (or absent). Calling
// Start on an already in_progress ceremony of the same type returns the
// existing record idempotently, which lets a wizard resume after restart.
// On remote failure the ceremony stays not_started - no partial state.
func (c *Ceremonies) Start(ctx context.Context, ceremonyType entity.CeremonyType) (entity.SprintCeremony, error) {
	if !entity.ValidCeremonyTypes[ceremonyType] {
		return entity.SprintCeremony{}, &InvalidTransitionError{
			Code:    ErrCodeUnknownSubject,
			Op:      "start_ceremony",
			Subject: string(ceremonyType),
			Message: "unknown ceremony type",
		}
	}

	if existing, ok := c.find(ceremonyType); ok {
		switch existing.Status {
		case entity.CeremonyInProgress:
			slog.Debug("ceremony already in progress, returning existing record", "type", ceremonyType)
			return existing, nil
		case entity.CeremonyCompleted:
			return entity.SprintCeremony{}, alreadyTerminal("start_ceremony", string(ceremonyType), string(existing.Status))
		}
	}

	record, err := c.coach.StartCeremony(ctx, ceremonyType)
	if err != nil {
		return entity.SprintCeremony{}, err
	}

	c.cache.Commit(entity.KindCeremonies, merge(c.List(), record))
	c.record(ctx, "start_ceremony", record)
	slog.Info("ceremony started", "type", ceremonyType, "id", record.ID)
	return record, nil
}

// CompletePlanning closes sprint planning with the committed task selection.
// Valid only from in_progress. On success a sprint_committed celebration is
// synthesized; on remote failure the ceremony keeps its prior state and the
// caller retries with the same payload - user input is never re-collected.
func (c *Ceremonies) CompletePlanning(ctx context.Context, req remote.PlanningRequest) (entity.SprintCeremony, error) {
	return c.complete(ctx, entity.CeremonyPlanning, "complete_planning",
		func(callCtx context.Context) (entity.SprintCeremony, error) {
			return c.coach.CompleteSprintPlanning(callCtx, req)
		},
		func() {
			snap := feed.Snapshot{TaskCount: len(req.SelectedTaskIDs)}
			if health, ok := cache.GetAs[entity.SprintHealth](c.cache, entity.KindSprintHealth); ok {
				snap.Points = health.CommittedPoints
				snap.Health = &health
			}
			c.feed.Synthesize(feed.TriggerSprintCommitted, snap)
		})
}

// CompleteReview closes the sprint review.
func (c *Ceremonies) CompleteReview(ctx context.Context, req remote.ReviewRequest) (entity.SprintCeremony, error) {
	return c.complete(ctx, entity.CeremonyReview, "complete_review",
		func(callCtx context.Context) (entity.SprintCeremony, error) {
			return c.coach.CompleteSprintReview(callCtx, req)
		},
		func() {
			snap := feed.Snapshot{}
			if health, ok := cache.GetAs[entity.SprintHealth](c.cache, entity.KindSprintHealth); ok {
				snap.Health = &health
			}
			c.feed.Synthesize(feed.TriggerSprintReviewed, snap)
		})
}

// CompleteRetrospective closes the retrospective.
func (c *Ceremonies) CompleteRetrospective(ctx context.Context, req remote.RetrospectiveRequest) (entity.SprintCeremony, error) {
	return c.complete(ctx, entity.CeremonyRetrospective, "complete_retrospective",
		func(callCtx context.Context) (entity.SprintCeremony, error) {
			return c.coach.CompleteRetrospective(callCtx, req)
		},
		func() {
			c.feed.Synthesize(feed.TriggerRetroCompleted, feed.Snapshot{})
		})
}

// complete is the shared completion path: reject unless in_progress, apply
// the optimistic completed state, call the gateway, then commit canonical or
// roll back. The InvalidTransition rejection happens before any network
// call.
func (c *Ceremonies) complete(
	ctx context.Context,
	ceremonyType entity.CeremonyType,
	op string,
	call func(context.Context) (entity.SprintCeremony, error),
	onSuccess func(),
) (entity.SprintCeremony, error) {
	existing, ok := c.find(ceremonyType)
	if !ok {
		return entity.SprintCeremony{}, notStarted(op, string(ceremonyType), string(entity.CeremonyNotStarted))
	}
	switch existing.Status {
	case entity.CeremonyCompleted:
		return entity.SprintCeremony{}, alreadyTerminal(op, string(ceremonyType), string(existing.Status))
	case entity.CeremonyInProgress:
		// valid
	default:
		return entity.SprintCeremony{}, notStarted(op, string(ceremonyType), string(existing.Status))
	}

	completedAt := c.now()
	token, err := c.cache.OptimisticApply(entity.KindCeremonies, func(current any) any {
		list, _ := current.([]entity.SprintCeremony)
		speculative := existing
		speculative.Status = entity.CeremonyCompleted
		speculative.CompletedAt = &completedAt
		return merge(list, speculative)
	})
	if err != nil {
		return entity.SprintCeremony{}, err
	}

	record, err := call(ctx)
	if err != nil {
		c.cache.Rollback(token)
		slog.Error("ceremony completion failed, state restored",
			"type", ceremonyType, "op", op, "error", err)
		return entity.SprintCeremony{}, err
	}

	c.cache.Commit(entity.KindCeremonies, merge(c.List(), record))
	c.record(ctx, op, record)
	slog.Info("ceremony completed", "type", ceremonyType, "id", record.ID)
	onSuccess()
	return record, nil
}

// record appends to the action journal when one is wired.
func (c *Ceremonies) record(ctx context.Context, action string, payload any) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.RecordAction(ctx, action, payload); err != nil {
		slog.Error("journal record failed", "action", action, "error", err)
	}
}
