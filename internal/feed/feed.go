// Package feed maintains the append-only coach message feed: newest first,
// merged by ID, with the unread counter always recomputed from the list.
//
// Messages arrive two ways: ingested from a server fetch, or synthesized
// locally after a successful state transition. Read state is local-only by
// design - marking read never calls the backend.
package feed

import (
	"log/slog"
	"sort"
	"time"

	"github.com/lifesprint/sensai/internal/cache"
	"github.com/lifesprint/sensai/internal/entity"
	"github.com/lifesprint/sensai/internal/ident"
)

// Feed drives the KindMessages slot of the entity cache. It never touches
// the slot except through Commit - the cache stays the single mutation path.
type Feed struct {
	cache  *cache.Cache
	ids    ident.Generator
	picker Picker
	now    func() time.Time
}

// Option configures a Feed.
type Option func(*Feed)

// WithClock overrides the timestamp source. Tests pin it.
func WithClock(now func() time.Time) Option {
	return func(f *Feed) { f.now = now }
}

// WithPicker overrides the celebration picker.
func WithPicker(p Picker) Option {
	return func(f *Feed) { f.picker = p }
}

// New creates a feed over the given cache.
func New(c *cache.Cache, ids ident.Generator, opts ...Option) *Feed {
	f := &Feed{
		cache:  c,
		ids:    ids,
		picker: FirstPicker{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Messages returns the current feed, newest first.
func (f *Feed) Messages() []entity.CoachMessage {
	msgs, _ := cache.GetAs[[]entity.CoachMessage](f.cache, entity.KindMessages)
	return msgs
}

// UnreadCount returns the number of unread messages. Recomputed on every
// call - there is no counter to drift.
func (f *Feed) UnreadCount() int {
	return entity.UnreadCount(f.Messages())
}

// Ingest merges server-fetched messages into the feed by ID. Idempotent:
// re-ingesting a present ID neither duplicates the message nor disturbs its
// local read state. New messages land in timestamp order, newest first.
func (f *Feed) Ingest(incoming []entity.CoachMessage) {
	current := f.Messages()
	present := make(map[string]bool, len(current))
	for _, m := range current {
		present[m.ID] = true
	}

	added := 0
	merged := current
	for _, m := range incoming {
		if present[m.ID] {
			continue
		}
		present[m.ID] = true
		merged = append(merged, m)
		added++
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})

	f.cache.Commit(entity.KindMessages, merged)
	slog.Debug("messages ingested", "incoming", len(incoming), "added", added, "total", len(merged))
}

// Synthesize builds a message for a trigger from the current entity snapshot
// and appends it unread at the head of the feed. An unknown trigger
// synthesizes nothing and returns the zero message.
func (f *Feed) Synthesize(trigger Trigger, snap Snapshot) entity.CoachMessage {
	msgType, tone, title, body, ok := Compose(trigger, snap, f.picker)
	if !ok {
		slog.Warn("unknown feed trigger, nothing synthesized", "trigger", trigger)
		return entity.CoachMessage{}
	}
	msg := entity.CoachMessage{
		ID:        f.ids.Generate(),
		Type:      msgType,
		Tone:      tone,
		Title:     title,
		Message:   body,
		Timestamp: f.now(),
		Read:      false,
	}

	merged := append([]entity.CoachMessage{msg}, f.Messages()...)
	f.cache.Commit(entity.KindMessages, merged)
	slog.Info("coach message synthesized", "trigger", trigger, "type", msgType, "tone", tone)
	return msg
}

// MarkRead flips one message to read. Unknown IDs are ignored.
func (f *Feed) MarkRead(id string) {
	msgs := f.Messages()
	changed := false
	updated := make([]entity.CoachMessage, len(msgs))
	for i, m := range msgs {
		if m.ID == id && !m.Read {
			m.Read = true
			changed = true
		}
		updated[i] = m
	}
	if changed {
		f.cache.Commit(entity.KindMessages, updated)
	}
}

// MarkAllRead flips every message to read.
func (f *Feed) MarkAllRead() {
	msgs := f.Messages()
	updated := make([]entity.CoachMessage, len(msgs))
	for i, m := range msgs {
		m.Read = true
		updated[i] = m
	}
	f.cache.Commit(entity.KindMessages, updated)
}
