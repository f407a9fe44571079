package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifesprint/sensai/internal/cache"
	"github.com/lifesprint/sensai/internal/entity"
	"github.com/lifesprint/sensai/internal/ident"
)

var feedEpoch = time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

func newTestFeed(t *testing.T, ids ...string) (*Feed, *cache.Cache) {
	t.Helper()
	c := cache.New()
	if len(ids) == 0 {
		ids = []string{"gen-1", "gen-2", "gen-3", "gen-4"}
	}
	f := New(c, ident.NewFixedGenerator(ids...), WithClock(func() time.Time { return feedEpoch }))
	return f, c
}

func TestFeed_Ingest_NewestFirst(t *testing.T) {
	f, _ := newTestFeed(t)

	f.Ingest([]entity.CoachMessage{
		{ID: "old", Timestamp: feedEpoch.Add(-time.Hour)},
		{ID: "new", Timestamp: feedEpoch},
	})

	msgs := f.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "new", msgs[0].ID)
	assert.Equal(t, "old", msgs[1].ID)
}

func TestFeed_Ingest_Idempotent(t *testing.T) {
	f, _ := newTestFeed(t)

	batch := []entity.CoachMessage{{ID: "m1", Timestamp: feedEpoch}}
	f.Ingest(batch)
	f.MarkRead("m1")
	f.Ingest(batch) // re-ingest the same ID

	msgs := f.Messages()
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Read, "re-ingest must not reset local read state")
	assert.Equal(t, 0, f.UnreadCount())
}

func TestFeed_UnreadCount_AlwaysRecomputed(t *testing.T) {
	f, _ := newTestFeed(t)

	f.Ingest([]entity.CoachMessage{
		{ID: "m1", Timestamp: feedEpoch},
		{ID: "m2", Timestamp: feedEpoch.Add(time.Minute)},
		{ID: "m3", Timestamp: feedEpoch.Add(2 * time.Minute)},
	})
	assert.Equal(t, 3, f.UnreadCount())

	f.MarkRead("m2")
	assert.Equal(t, 2, f.UnreadCount())

	f.MarkRead("m2") // repeat is a no-op
	assert.Equal(t, 2, f.UnreadCount())

	f.MarkAllRead()
	assert.Equal(t, 0, f.UnreadCount())
}

func TestFeed_MarkRead_UnknownIDIgnored(t *testing.T) {
	f, _ := newTestFeed(t)
	f.Ingest([]entity.CoachMessage{{ID: "m1", Timestamp: feedEpoch}})

	f.MarkRead("missing")

	assert.Equal(t, 1, f.UnreadCount())
}

func TestFeed_Synthesize_AppendsUnreadAtHead(t *testing.T) {
	f, _ := newTestFeed(t, "msg-1", "msg-2")
	f.Ingest([]entity.CoachMessage{{ID: "server-1", Timestamp: feedEpoch.Add(-time.Hour), Read: true}})

	before := f.UnreadCount()
	msg := f.Synthesize(TriggerStandupCompleted, Snapshot{})

	msgs := f.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "msg-1", msgs[0].ID)
	assert.Equal(t, entity.MessageCelebration, msg.Type)
	assert.False(t, msg.Read)
	assert.Equal(t, before+1, f.UnreadCount(), "synthesis increments unread by exactly one")
	assert.Equal(t, feedEpoch, msg.Timestamp)
}

func TestFeed_Synthesize_UnknownTriggerSynthesizesNothing(t *testing.T) {
	f, _ := newTestFeed(t, "msg-1")
	f.Ingest([]entity.CoachMessage{{ID: "server-1", Timestamp: feedEpoch}})

	msg := f.Synthesize(Trigger("solar_eclipse"), Snapshot{})

	assert.Empty(t, msg.ID, "no message minted for an unknown trigger")
	msgs := f.Messages()
	require.Len(t, msgs, 1, "feed must be untouched")
	assert.Equal(t, "server-1", msgs[0].ID)
}

func TestCompose_UnknownTrigger_NotOK(t *testing.T) {
	_, _, _, body, ok := Compose(Trigger("solar_eclipse"), Snapshot{}, FirstPicker{})
	assert.False(t, ok)
	assert.Empty(t, body)
}

func TestCompose_StandupCelebration_PickedFromSet(t *testing.T) {
	for i := range celebrations {
		picker := pinnedPicker(i)
		msgType, tone, _, body, _ := Compose(TriggerStandupCompleted, Snapshot{}, picker)

		assert.Equal(t, entity.MessageCelebration, msgType)
		assert.Equal(t, entity.ToneEncouraging, tone)
		assert.Contains(t, celebrations, body)
		assert.Equal(t, celebrations[i], body)
	}
}

func TestCompose_Greeting_ToneFollowsHealth(t *testing.T) {
	tests := []struct {
		name   string
		status entity.HealthStatus
		tone   entity.Tone
	}{
		{"behind is direct", entity.HealthBehind, entity.ToneDirect},
		{"ahead is encouraging", entity.HealthAhead, entity.ToneEncouraging},
		{"on_track is neutral", entity.HealthOnTrack, entity.ToneNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Snapshot{Health: &entity.SprintHealth{HealthStatus: tt.status}}
			msgType, tone, _, _, _ := Compose(TriggerAppOpened, snap, FirstPicker{})
			assert.Equal(t, entity.MessageGreeting, msgType)
			assert.Equal(t, tt.tone, tone)
		})
	}
}

func TestCompose_Greeting_NoHealthIsNeutral(t *testing.T) {
	_, tone, _, _, _ := Compose(TriggerAppOpened, Snapshot{}, FirstPicker{})
	assert.Equal(t, entity.ToneNeutral, tone)
}

func TestCompose_SprintCommitted_MentionsTaskCount(t *testing.T) {
	_, _, _, body, _ := Compose(TriggerSprintCommitted, Snapshot{TaskCount: 2, Points: 13}, FirstPicker{})

	assert.Contains(t, body, "2 tasks")
	assert.Contains(t, body, "13 points")
}

func TestCompose_RecoveryTask_TitleCasesDimension(t *testing.T) {
	_, tone, _, body, _ := Compose(TriggerRecoveryTaskAdded, Snapshot{Dimension: "health"}, FirstPicker{})

	assert.Equal(t, entity.ToneEncouraging, tone)
	assert.Contains(t, body, "Health")
}

func TestCompose_Deterministic(t *testing.T) {
	snap := Snapshot{TaskCount: 3, Points: 8}

	t1, tone1, title1, body1, _ := Compose(TriggerSprintCommitted, snap, FirstPicker{})
	t2, tone2, title2, body2, _ := Compose(TriggerSprintCommitted, snap, FirstPicker{})

	assert.Equal(t, t1, t2)
	assert.Equal(t, tone1, tone2)
	assert.Equal(t, title1, title2)
	assert.Equal(t, body1, body2)
}

func TestRandomPicker_SameSeedSamePicks(t *testing.T) {
	a := NewRandomPicker(7, 11)
	b := NewRandomPicker(7, 11)

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Pick(5), b.Pick(5))
	}
}

func TestRandomPicker_SmallN(t *testing.T) {
	p := NewRandomPicker(1, 2)
	assert.Equal(t, 0, p.Pick(0))
	assert.Equal(t, 0, p.Pick(1))
}

// pinnedPicker always returns the same index.
type pinnedPicker int

func (p pinnedPicker) Pick(n int) int {
	if int(p) >= n {
		return 0
	}
	return int(p)
}
