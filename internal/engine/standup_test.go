package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifesprint/sensai/internal/cache"
	"github.com/lifesprint/sensai/internal/entity"
	"github.com/lifesprint/sensai/internal/feed"
	"github.com/lifesprint/sensai/internal/ident"
	"github.com/lifesprint/sensai/internal/remote"
	"github.com/lifesprint/sensai/internal/testutil"
)

func pendingStandup() entity.DailyStandup {
	return entity.DailyStandup{
		ID:     "standup-2026-08-31",
		Date:   "2026-08-31",
		Status: entity.StandupPending,
		Blockers: []entity.StandupBlocker{
			{ID: "b1", Description: "waiting on docs"},
		},
	}
}

func TestStandup_Today_LazyFetch(t *testing.T) {
	c, coach, _, _ := newFixture(t)
	coach.standup = pendingStandup()

	got, err := c.Today(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.StandupPending, got.Status)
	assert.Equal(t, 1, coach.calls["fetch_standup"])

	// Second access served from cache
	_, err = c.Today(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, coach.calls["fetch_standup"])
}

// Scenario: a session lives across midnight. Yesterday's completed standup
// is stale, not terminal - Today re-fetches the new day's pending record and
// the fresh completion goes through.
func TestStandup_Today_RollsOverAtMidnight(t *testing.T) {
	coach := newFakeCoach()
	coach.standup = pendingStandup()
	ca := cache.New()
	ids := ident.NewFixedGenerator("msg-1", "msg-2", "msg-3")
	clock := testutil.NewClock(fixedNow)
	f := feed.New(ca, ids, feed.WithClock(clock.Now))
	c := NewCeremonies(ca, coach, f, WithCeremonyClock(clock.Now))

	done, err := c.CompleteStandup(context.Background(), remote.CompleteStandupRequest{Mood: "good"})
	require.NoError(t, err)
	require.Equal(t, entity.StandupCompleted, done.Status)

	// Past midnight the server stages the next day's pending record
	clock.Advance(24 * time.Hour)
	coach.standup = entity.DailyStandup{
		ID:     "standup-2026-09-01",
		Date:   "2026-09-01",
		Status: entity.StandupPending,
	}

	got, err := c.Today(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-09-01", got.Date)
	assert.Equal(t, entity.StandupPending, got.Status)

	fresh, err := c.CompleteStandup(context.Background(), remote.CompleteStandupRequest{Mood: "rested"})
	require.NoError(t, err, "the new day's standup must not inherit yesterday's terminal state")
	assert.Equal(t, entity.StandupCompleted, fresh.Status)
	assert.Equal(t, "2026-09-01", fresh.Date)
}

// Scenario: completing a pending standup sets status and completedAt exactly
// once and appends an unread celebration.
func TestStandup_Complete(t *testing.T) {
	c, coach, _, f := newFixture(t)
	coach.standup = pendingStandup()

	before := f.UnreadCount()
	got, err := c.CompleteStandup(context.Background(), remote.CompleteStandupRequest{
		Blockers: []entity.StandupBlocker{{ID: "b1", Description: "blocked by waiting on docs"}},
		Notes:    "felt good",
		Mood:     "good",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StandupCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, fixedNow, *got.CompletedAt)

	msgs := f.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, entity.MessageCelebration, msgs[0].Type)
	assert.False(t, msgs[0].Read)
	assert.Equal(t, before+1, f.UnreadCount())
}

func TestStandup_Complete_TerminalRejected(t *testing.T) {
	c, coach, _, _ := newFixture(t)
	coach.standup = pendingStandup()

	_, err := c.CompleteStandup(context.Background(), remote.CompleteStandupRequest{})
	require.NoError(t, err)

	// Repeat completion and late skip both rejected, no network call
	calls := coach.calls["complete_standup"]
	_, err = c.CompleteStandup(context.Background(), remote.CompleteStandupRequest{})
	assert.True(t, IsInvalidTransition(err))
	assert.Equal(t, calls, coach.calls["complete_standup"])

	_, err = c.SkipStandup(context.Background(), "tired")
	var te *InvalidTransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ErrCodeAlreadyTerminal, te.Code)
	assert.Zero(t, coach.calls["skip_standup"])
}

func TestStandup_Skip_TerminalRejectsComplete(t *testing.T) {
	c, coach, _, f := newFixture(t)
	coach.standup = pendingStandup()

	got, err := c.SkipStandup(context.Background(), "travel day")
	require.NoError(t, err)
	assert.Equal(t, entity.StandupSkipped, got.Status)

	_, err = c.CompleteStandup(context.Background(), remote.CompleteStandupRequest{})
	assert.True(t, IsInvalidTransition(err))

	// Skip synthesizes a nudge, not a celebration
	msgs := f.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, entity.MessageNudge, msgs[0].Type)
}

func TestStandup_Complete_RemoteFailureRollsBack(t *testing.T) {
	c, coach, ca, f := newFixture(t)
	coach.standup = pendingStandup()
	coach.failOps["complete_standup"] = true

	_, err := c.CompleteStandup(context.Background(), remote.CompleteStandupRequest{Mood: "good"})
	require.Error(t, err)
	assert.True(t, remote.IsRemoteFailure(err))

	got, ok := cache.GetAs[entity.DailyStandup](ca, entity.KindStandup)
	require.True(t, ok)
	assert.Equal(t, entity.StandupPending, got.Status, "failed completion must restore pending")
	assert.Nil(t, got.CompletedAt)
	assert.Empty(t, f.Messages())
}

func TestStandup_ConvertBlocker(t *testing.T) {
	c, coach, _, _ := newFixture(t)
	coach.standup = pendingStandup()

	got, err := c.ConvertBlocker(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, got.Blockers, 1)
	assert.True(t, got.Blockers[0].ConvertedToTask)
	assert.Equal(t, "task-b1", got.Blockers[0].TaskID)

	// Conversion is monotonic and idempotent
	calls := coach.calls["convert_blocker"]
	again, err := c.ConvertBlocker(context.Background(), "b1")
	require.NoError(t, err)
	assert.True(t, again.Blockers[0].ConvertedToTask)
	assert.Equal(t, calls, coach.calls["convert_blocker"])
}

func TestStandup_ConvertBlocker_Unknown(t *testing.T) {
	c, coach, _, _ := newFixture(t)
	coach.standup = pendingStandup()

	_, err := c.ConvertBlocker(context.Background(), "nope")
	var te *InvalidTransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ErrCodeUnknownSubject, te.Code)
}

func TestStandup_ConvertBlocker_RemoteFailureRollsBack(t *testing.T) {
	c, coach, ca, _ := newFixture(t)
	coach.standup = pendingStandup()
	coach.failOps["convert_blocker"] = true

	_, err := c.ConvertBlocker(context.Background(), "b1")
	require.Error(t, err)

	got, _ := cache.GetAs[entity.DailyStandup](ca, entity.KindStandup)
	assert.False(t, got.Blockers[0].ConvertedToTask)
}
