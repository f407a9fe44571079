// Package session assembles the coaching core: one explicitly constructed
// Session owns the entity cache, the remote gateway, the transition engines,
// and the message feed. Nothing here is global - callers build a Session,
// inject its collaborators, and pass it down.
package session

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/lifesprint/sensai/internal/cache"
	"github.com/lifesprint/sensai/internal/engine"
	"github.com/lifesprint/sensai/internal/entity"
	"github.com/lifesprint/sensai/internal/feed"
	"github.com/lifesprint/sensai/internal/ident"
	"github.com/lifesprint/sensai/internal/remote"
)

// Session is the root object of the coaching core. All reads go through the
// cache; all mutations flow through the engines or the Session's own
// optimistic operations.
type Session struct {
	Cache         *cache.Cache
	Feed          *feed.Feed
	Ceremonies    *engine.Ceremonies
	Interventions *engine.Interventions

	coach    remote.Coach
	recorder engine.ActionRecorder
	now      func() time.Time
}

// Option configures a Session at construction time.
type Option func(*settings)

type settings struct {
	now      func() time.Time
	ids      ident.Generator
	picker   feed.Picker
	recorder engine.ActionRecorder
	policy   *engine.OverridePolicy
}

// WithClock pins the timestamp source. Tests and the scenario harness use a
// frozen clock so traces stay byte-stable.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithIDs overrides the ID generator for synthesized messages and journal
// entries.
func WithIDs(g ident.Generator) Option {
	return func(s *settings) { s.ids = g }
}

// WithPicker overrides the celebration picker.
func WithPicker(p feed.Picker) Option {
	return func(s *settings) { s.picker = p }
}

// WithRecorder attaches an action recorder; every successful mutation is
// journaled through it.
func WithRecorder(r engine.ActionRecorder) Option {
	return func(s *settings) { s.recorder = r }
}

// WithOverridePolicy replaces the default intervention override policy.
func WithOverridePolicy(p engine.OverridePolicy) Option {
	return func(s *settings) { s.policy = &p }
}

// New builds a Session around the given remote coach.
func New(coach remote.Coach, opts ...Option) *Session {
	cfg := settings{
		now:    time.Now,
		ids:    ident.UUIDv7Generator{},
		picker: feed.NewRandomPicker(uint64(time.Now().UnixNano()), 0),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ca := cache.New()
	f := feed.New(ca, cfg.ids, feed.WithClock(cfg.now), feed.WithPicker(cfg.picker))

	ceremonyOpts := []engine.CeremonyOption{engine.WithCeremonyClock(cfg.now)}
	interventionOpts := []engine.InterventionOption{engine.WithInterventionClock(cfg.now)}
	if cfg.recorder != nil {
		ceremonyOpts = append(ceremonyOpts, engine.WithCeremonyRecorder(cfg.recorder))
		interventionOpts = append(interventionOpts, engine.WithInterventionRecorder(cfg.recorder))
	}
	if cfg.policy != nil {
		interventionOpts = append(interventionOpts, engine.WithOverridePolicy(*cfg.policy))
	}

	return &Session{
		Cache:         ca,
		Feed:          f,
		Ceremonies:    engine.NewCeremonies(ca, coach, f, ceremonyOpts...),
		Interventions: engine.NewInterventions(ca, coach, interventionOpts...),
		coach:         coach,
		recorder:      cfg.recorder,
		now:           cfg.now,
	}
}

// Refresh pulls the canonical state of every fetchable entity into the
// cache. Each fetch is independent: one failing endpoint does not block the
// rest, and the joined error reports everything that went wrong. Today's
// standup is deliberately not fetched here - it is lazy, created server-side
// on first access through Ceremonies.Today.
func (s *Session) Refresh(ctx context.Context) error {
	var errs []error

	if velocity, err := s.coach.FetchVelocity(ctx); err != nil {
		errs = append(errs, err)
	} else {
		s.Cache.Commit(entity.KindVelocity, reconcileVelocity(velocity))
	}

	if wheel, err := s.coach.FetchLifeWheel(ctx); err != nil {
		errs = append(errs, err)
	} else {
		wheel.RecomputeNeglected()
		s.Cache.Commit(entity.KindLifeWheel, wheel)
	}

	if interventions, err := s.coach.FetchInterventions(ctx); err != nil {
		errs = append(errs, err)
	} else {
		s.Cache.Commit(entity.KindInterventions, interventions)
	}

	if messages, err := s.coach.FetchMessages(ctx); err != nil {
		errs = append(errs, err)
	} else {
		s.Feed.Ingest(messages)
	}

	if prefs, err := s.coach.FetchSettings(ctx); err != nil {
		errs = append(errs, err)
	} else {
		s.Cache.Commit(entity.KindSettings, prefs)
	}

	if len(errs) > 0 {
		slog.Warn("session refresh incomplete", "failures", len(errs))
		return errors.Join(errs...)
	}
	slog.Info("session refreshed")
	return nil
}

// reconcileVelocity enforces the derivation invariant: the average the
// server reports must match the trailing-window average of the history it
// shipped. A divergent average is replaced with the derived value, loudly.
func reconcileVelocity(m entity.VelocityMetrics) entity.VelocityMetrics {
	if len(m.VelocityHistory) == 0 {
		return m
	}
	derived := entity.AverageVelocity(m.VelocityHistory, entity.DefaultVelocityWindow)
	if math.Abs(derived-m.AverageVelocity) > 0.01 {
		slog.Warn("server average velocity diverges from history, recomputing",
			"reported", m.AverageVelocity, "derived", derived)
		m.AverageVelocity = derived
	}
	return m
}

// Open refreshes the session and synthesizes the app-opened greeting from
// whatever sprint health is currently known. The greeting lands even when
// parts of the refresh failed - a partially stale greeting beats silence.
func (s *Session) Open(ctx context.Context) (entity.CoachMessage, error) {
	err := s.Refresh(ctx)

	snap := feed.Snapshot{}
	if health, ok := cache.GetAs[entity.SprintHealth](s.Cache, entity.KindSprintHealth); ok {
		snap.Health = &health
	}
	msg := s.Feed.Synthesize(feed.TriggerAppOpened, snap)
	return msg, err
}

// RecomputeHealth derives sprint health from the given progress numbers and
// the configured sprint length, then commits it. Health is never fetched: it
// is a pure function of current data.
func (s *Session) RecomputeHealth(dayOfSprint, completedPoints, committedPoints int) entity.SprintHealth {
	totalDays := entity.DefaultSprintLengthDays
	if prefs, ok := cache.GetAs[entity.Settings](s.Cache, entity.KindSettings); ok && prefs.SprintLengthDays > 0 {
		totalDays = prefs.SprintLengthDays
	}
	health := entity.DeriveSprintHealth(dayOfSprint, totalDays, completedPoints, committedPoints)
	s.Cache.Commit(entity.KindSprintHealth, health)
	return health
}

// AddRecoveryTask sends a recovery task for a neglected dimension to the
// backend and commits the returned wheel, then celebrates the restart.
func (s *Session) AddRecoveryTask(ctx context.Context, task entity.RecoveryTask) (entity.LifeWheelMetrics, error) {
	wheel, err := s.coach.AddRecoveryTask(ctx, task)
	if err != nil {
		return entity.LifeWheelMetrics{}, err
	}
	wheel.RecomputeNeglected()
	s.Cache.Commit(entity.KindLifeWheel, wheel)
	s.record(ctx, "add_recovery_task", task)
	s.Feed.Synthesize(feed.TriggerRecoveryTaskAdded, feed.Snapshot{Dimension: task.Dimension})
	slog.Info("recovery task added", "dimension", task.Dimension, "points", task.Points)
	return wheel, nil
}

// Intake sends free-text input through the server's structuring pipeline and
// returns the draft it proposes. Nothing is committed - drafts await user
// approval elsewhere.
func (s *Session) Intake(ctx context.Context, req remote.IntakeRequest) (remote.IntakeDraft, error) {
	draft, err := s.coach.ProcessIntake(ctx, req)
	if err != nil {
		return remote.IntakeDraft{}, err
	}
	s.record(ctx, "process_intake", draft)
	return draft, nil
}

// Analytics fetches the trailing report for the given period. Read-only
// passthrough, never cached.
func (s *Session) Analytics(ctx context.Context, period string) (remote.AnalyticsReport, error) {
	return s.coach.FetchAnalytics(ctx, period)
}

// Settings returns the cached coaching preferences.
func (s *Session) Settings() (entity.Settings, bool) {
	return cache.GetAs[entity.Settings](s.Cache, entity.KindSettings)
}

// UpdateSettings applies the patch optimistically, pushes it to the backend,
// and commits the canonical result. On remote failure the previous settings
// are restored untouched.
func (s *Session) UpdateSettings(ctx context.Context, patch remote.SettingsPatch) (entity.Settings, error) {
	token, err := s.Cache.OptimisticApply(entity.KindSettings, func(current any) any {
		speculative, _ := current.(entity.Settings)
		applyPatch(&speculative, patch)
		return speculative
	})
	if err != nil {
		return entity.Settings{}, err
	}

	canonical, err := s.coach.UpdateSettings(ctx, patch)
	if err != nil {
		s.Cache.Rollback(token)
		slog.Error("settings update failed, previous values restored", "error", err)
		return entity.Settings{}, err
	}

	s.Cache.Commit(entity.KindSettings, canonical)
	s.record(ctx, "update_settings", patch)
	slog.Info("settings updated")
	return canonical, nil
}

func applyPatch(s *entity.Settings, patch remote.SettingsPatch) {
	if patch.CoachTone != nil {
		s.CoachTone = *patch.CoachTone
	}
	if patch.InterventionsEnabled != nil {
		s.InterventionsEnabled = *patch.InterventionsEnabled
	}
	if patch.DailyStandupTime != nil {
		s.DailyStandupTime = *patch.DailyStandupTime
	}
	if patch.SprintLengthDays != nil {
		s.SprintLengthDays = *patch.SprintLengthDays
	}
	if patch.MaxDailyCapacity != nil {
		s.MaxDailyCapacity = *patch.MaxDailyCapacity
	}
	if patch.OvercommitThreshold != nil {
		s.OvercommitThreshold = *patch.OvercommitThreshold
	}
	if patch.OvercommitBuffer != nil {
		s.OvercommitBuffer = *patch.OvercommitBuffer
	}
	if patch.DimensionAlertThreshold != nil {
		s.DimensionAlertThreshold = *patch.DimensionAlertThreshold
	}
	if patch.DimensionPriorities != nil {
		s.DimensionPriorities = patch.DimensionPriorities
	}
}

func (s *Session) record(ctx context.Context, action string, payload any) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordAction(ctx, action, payload); err != nil {
		slog.Warn("action journal write failed", "action", action, "error", err)
	}
}
