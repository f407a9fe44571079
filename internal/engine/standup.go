package engine

import (
	"context"
	"log/slog"

	"github.com/lifesprint/sensai/internal/cache"
	"github.com/lifesprint/sensai/internal/entity"
	"github.com/lifesprint/sensai/internal/feed"
	"github.com/lifesprint/sensai/internal/remote"
)

// Today returns the cached standup, fetching (and lazily creating
// server-side) today's record on first access. A cached record from a
// previous calendar day is stale, not terminal: it is treated as absent and
// re-fetched, so a session living across midnight rolls over to the new
// day's pending standup.
func (c *Ceremonies) Today(ctx context.Context) (entity.DailyStandup, error) {
	today := c.now().Format("2006-01-02")
	if standup, ok := cache.GetAs[entity.DailyStandup](c.cache, entity.KindStandup); ok && standup.Date == today {
		return standup, nil
	}

	standup, err := c.coach.FetchStandup(ctx, today)
	if err != nil {
		return entity.DailyStandup{}, err
	}
	c.cache.Commit(entity.KindStandup, standup)
	return standup, nil
}

// CompleteStandup moves today's standup pending -> completed. Completed and
// skipped are terminal; a repeat attempt is rejected with InvalidTransition
// before any network call. CompletedAt is set exactly once, from the
// canonical server record.
func (c *Ceremonies) CompleteStandup(ctx context.Context, req remote.CompleteStandupRequest) (entity.DailyStandup, error) {
	standup, err := c.Today(ctx)
	if err != nil {
		return entity.DailyStandup{}, err
	}
	if standup.Status.Terminal() {
		return entity.DailyStandup{}, alreadyTerminal("complete_standup", standup.ID, string(standup.Status))
	}

	completedAt := c.now()
	token, err := c.cache.OptimisticApply(entity.KindStandup, func(current any) any {
		speculative, _ := current.(entity.DailyStandup)
		speculative.Status = entity.StandupCompleted
		speculative.CompletedYesterday = req.CompletedYesterday
		speculative.FocusToday = req.FocusToday
		speculative.Blockers = req.Blockers
		speculative.Mood = req.Mood
		speculative.Notes = req.Notes
		speculative.CompletedAt = &completedAt
		return speculative
	})
	if err != nil {
		return entity.DailyStandup{}, err
	}

	record, err := c.coach.CompleteStandup(ctx, req)
	if err != nil {
		c.cache.Rollback(token)
		slog.Error("standup completion failed, state restored", "id", standup.ID, "error", err)
		return entity.DailyStandup{}, err
	}

	c.cache.Commit(entity.KindStandup, record)
	c.record(ctx, "complete_standup", record)
	slog.Info("standup completed", "id", record.ID, "date", record.Date)
	c.feed.Synthesize(feed.TriggerStandupCompleted, feed.Snapshot{Mood: record.Mood})
	return record, nil
}

// SkipStandup moves today's standup pending -> skipped. Terminal states
// reject the repeat just like CompleteStandup.
func (c *Ceremonies) SkipStandup(ctx context.Context, reason string) (entity.DailyStandup, error) {
	standup, err := c.Today(ctx)
	if err != nil {
		return entity.DailyStandup{}, err
	}
	if standup.Status.Terminal() {
		return entity.DailyStandup{}, alreadyTerminal("skip_standup", standup.ID, string(standup.Status))
	}

	token, err := c.cache.OptimisticApply(entity.KindStandup, func(current any) any {
		speculative, _ := current.(entity.DailyStandup)
		speculative.Status = entity.StandupSkipped
		return speculative
	})
	if err != nil {
		return entity.DailyStandup{}, err
	}

	record, err := c.coach.SkipStandup(ctx, reason)
	if err != nil {
		c.cache.Rollback(token)
		return entity.DailyStandup{}, err
	}

	c.cache.Commit(entity.KindStandup, record)
	c.record(ctx, "skip_standup", record)
	slog.Info("standup skipped", "id", record.ID, "reason", reason)
	c.feed.Synthesize(feed.TriggerStandupSkipped, feed.Snapshot{})
	return record, nil
}

// ConvertBlocker promotes a blocker into a tracked task. Conversion is
// monotonic: a blocker already converted is returned as-is with no remote
// call. Unknown blocker IDs are rejected.
func (c *Ceremonies) ConvertBlocker(ctx context.Context, blockerID string) (entity.DailyStandup, error) {
	standup, err := c.Today(ctx)
	if err != nil {
		return entity.DailyStandup{}, err
	}

	found := false
	for _, b := range standup.Blockers {
		if b.ID != blockerID {
			continue
		}
		found = true
		if b.ConvertedToTask {
			slog.Debug("blocker already converted, skipping (idempotent)", "blocker", blockerID)
			return standup, nil
		}
	}
	if !found {
		return entity.DailyStandup{}, &InvalidTransitionError{
			Code:    ErrCodeUnknownSubject,
			Op:      "convert_blocker",
			Subject: blockerID,
			Message: "blocker not present on today's standup",
		}
	}

	token, err := c.cache.OptimisticApply(entity.KindStandup, func(current any) any {
		speculative, _ := current.(entity.DailyStandup)
		blockers := make([]entity.StandupBlocker, len(speculative.Blockers))
		copy(blockers, speculative.Blockers)
		for i := range blockers {
			if blockers[i].ID == blockerID {
				blockers[i].ConvertedToTask = true
			}
		}
		speculative.Blockers = blockers
		return speculative
	})
	if err != nil {
		return entity.DailyStandup{}, err
	}

	record, err := c.coach.ConvertBlockerToTask(ctx, blockerID)
	if err != nil {
		c.cache.Rollback(token)
		return entity.DailyStandup{}, err
	}

	c.cache.Commit(entity.KindStandup, record)
	c.record(ctx, "convert_blocker", record)
	slog.Info("blocker converted to task", "blocker", blockerID)
	return record, nil
}
