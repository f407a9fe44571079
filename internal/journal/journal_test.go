package journal

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var journalEpoch = time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	tick := 0
	j, err := Open(":memory:", WithClock(func() time.Time {
		tick++
		return journalEpoch.Add(time.Duration(tick) * time.Second)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_RecordAndList(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.RecordAction(ctx, "complete_standup", map[string]string{"id": "standup-1"}))
	require.NoError(t, j.RecordAction(ctx, "start_ceremony", map[string]string{"type": "planning"}))

	entries, err := j.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, int64(1), entries[0].Seq)
	assert.Equal(t, "complete_standup", entries[0].Action)
	assert.Len(t, entries[0].ID, 64, "content-addressed sha256 hex")

	var payload map[string]string
	require.NoError(t, json.Unmarshal(entries[0].Payload, &payload))
	assert.Equal(t, "standup-1", payload["id"])
}

func TestJournal_DuplicateContentDeduplicated(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	record := map[string]string{"id": "standup-1", "completed_at": "2026-08-31T09:30:00Z"}
	require.NoError(t, j.RecordAction(ctx, "complete_standup", record))
	require.NoError(t, j.RecordAction(ctx, "complete_standup", record), "retried write is silently ignored")

	n, err := j.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestJournal_DistinctContentKept(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.RecordAction(ctx, "complete_standup", map[string]string{"id": "standup-1"}))
	require.NoError(t, j.RecordAction(ctx, "complete_standup", map[string]string{"id": "standup-2"}))
	// Same payload under a different action is a different entry too.
	require.NoError(t, j.RecordAction(ctx, "skip_standup", map[string]string{"id": "standup-1"}))

	n, err := j.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestJournal_List_FilterByAction(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.RecordAction(ctx, "complete_standup", map[string]int{"day": 1}))
	require.NoError(t, j.RecordAction(ctx, "acknowledge_intervention", nil))
	require.NoError(t, j.RecordAction(ctx, "complete_standup", map[string]int{"day": 2}))

	entries, err := j.List(ctx, Filter{Action: "complete_standup"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "complete_standup", e.Action)
	}
}

func TestJournal_List_SinceAndLimit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, j.RecordAction(ctx, "tick", i))
	}

	// Clock advances one second per record; entries 3 and 4 are at +3s, +4s
	entries, err := j.List(ctx, Filter{Since: journalEpoch.Add(3 * time.Second)})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	limited, err := j.List(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, int64(1), limited[0].Seq)
}

func TestJournal_List_EmptyIsNotNil(t *testing.T) {
	j := openTestJournal(t)

	entries, err := j.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestJournal_Replay_SeqOrder(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.RecordAction(ctx, "a", nil))
	require.NoError(t, j.RecordAction(ctx, "b", nil))
	require.NoError(t, j.RecordAction(ctx, "c", nil))

	var seen []string
	require.NoError(t, j.Replay(ctx, func(e Entry) error {
		seen = append(seen, e.Action)
		return nil
	}))
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestJournal_Replay_StopsOnError(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.RecordAction(ctx, "a", nil))
	require.NoError(t, j.RecordAction(ctx, "b", nil))

	count := 0
	err := j.Replay(ctx, func(Entry) error {
		count++
		return assert.AnError
	})
	require.Error(t, err)
	assert.Equal(t, 1, count)
}

func TestEntryID_Canonical(t *testing.T) {
	// Key order in the source document must not change the identity.
	a, err := EntryID("complete_standup", []byte(`{"id":"s1","mood":"good"}`))
	require.NoError(t, err)
	b, err := EntryID("complete_standup", []byte(`{"mood":"good","id":"s1"}`))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := EntryID("skip_standup", []byte(`{"id":"s1","mood":"good"}`))
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "action participates in identity")

	_, err = EntryID("bad", []byte(`{`))
	require.Error(t, err)
}
