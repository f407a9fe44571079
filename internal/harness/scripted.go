package harness

import (
	"context"
	"errors"
	"time"

	"github.com/lifesprint/sensai/internal/entity"
	"github.com/lifesprint/sensai/internal/remote"
)

// ScriptedCoach is a deterministic remote.Coach for scenarios and tests. It
// serves the staged state, applies mutations to it the way the real backend
// would, and fails the operations named in fail with a RemoteFailure.
type ScriptedCoach struct {
	standup       entity.DailyStandup
	interventions []entity.Intervention
	velocity      entity.VelocityMetrics
	wheel         entity.LifeWheelMetrics
	prefs         entity.Settings
	messages      []entity.CoachMessage

	fail map[string]bool
	now  func() time.Time
}

// NewScriptedCoach builds a coach from a remote fixture with the given
// clock.
func NewScriptedCoach(fixture RemoteFixture, now func() time.Time) (*ScriptedCoach, error) {
	c := &ScriptedCoach{
		fail: make(map[string]bool),
		now:  now,
	}
	for _, op := range fixture.Fail {
		c.fail[op] = true
	}

	if fixture.Standup != nil {
		c.standup = entity.DailyStandup{
			ID:     fixture.Standup.ID,
			Date:   fixture.Standup.Date,
			Status: entity.StandupStatus(fixture.Standup.Status),
		}
		for _, b := range fixture.Standup.Blockers {
			c.standup.Blockers = append(c.standup.Blockers, entity.StandupBlocker{
				ID:              b.ID,
				Description:     b.Description,
				ConvertedToTask: b.Converted,
			})
		}
	}

	for _, iv := range fixture.Interventions {
		c.interventions = append(c.interventions, entity.Intervention{
			ID:       iv.ID,
			Type:     entity.InterventionType(iv.Type),
			Urgency:  entity.Urgency(iv.Urgency),
			Category: entity.Category(iv.Category),
			Title:    iv.Title,
			Message:  iv.Message,
		})
	}

	if fixture.Velocity != nil {
		c.velocity = entity.VelocityMetrics{
			CurrentVelocity: fixture.Velocity.Current,
			AverageVelocity: fixture.Velocity.Average,
		}
		for _, h := range fixture.Velocity.History {
			c.velocity.VelocityHistory = append(c.velocity.VelocityHistory, entity.SprintVelocityRecord{
				SprintNumber: h.Sprint,
				Points:       h.Points,
			})
		}
	}

	if fixture.Wheel != nil {
		c.wheel = entity.LifeWheelMetrics{BalanceScore: fixture.Wheel.Balance}
		for _, d := range fixture.Wheel.Dimensions {
			c.wheel.Dimensions = append(c.wheel.Dimensions, entity.DimensionMetric{
				Dimension:         d.Name,
				PercentageOfTotal: d.Percent,
				IsNeglected:       d.Neglected,
			})
		}
	}

	for _, m := range fixture.Messages {
		at, err := time.Parse(time.RFC3339, m.At)
		if err != nil {
			return nil, err
		}
		c.messages = append(c.messages, entity.CoachMessage{
			ID:        m.ID,
			Type:      entity.MessageSummary,
			Tone:      entity.ToneNeutral,
			Title:     m.Title,
			Message:   m.Body,
			Timestamp: at.UTC(),
			Read:      m.Read,
		})
	}

	return c, nil
}

// FailOp marks one operation as failing. Tests use it to flip failure
// injection mid-flow.
func (c *ScriptedCoach) FailOp(op string, failing bool) {
	c.fail[op] = failing
}

func (c *ScriptedCoach) op(name string) error {
	if c.fail[name] {
		return &remote.RemoteFailure{Operation: name, Cause: errors.New("scripted failure")}
	}
	return nil
}

func (c *ScriptedCoach) FetchVelocity(context.Context) (entity.VelocityMetrics, error) {
	return c.velocity, c.op("fetch_velocity")
}

func (c *ScriptedCoach) FetchStandup(_ context.Context, date string) (entity.DailyStandup, error) {
	if err := c.op("fetch_standup"); err != nil {
		return entity.DailyStandup{}, err
	}
	if c.standup.ID == "" {
		// Lazy creation, like the real backend.
		c.standup = entity.DailyStandup{
			ID:     "standup-" + date,
			Date:   date,
			Status: entity.StandupPending,
		}
	}
	return c.standup, nil
}

func (c *ScriptedCoach) CompleteStandup(_ context.Context, req remote.CompleteStandupRequest) (entity.DailyStandup, error) {
	if err := c.op("complete_standup"); err != nil {
		return entity.DailyStandup{}, err
	}
	completedAt := c.now()
	c.standup.Status = entity.StandupCompleted
	c.standup.CompletedYesterday = req.CompletedYesterday
	c.standup.FocusToday = req.FocusToday
	if len(req.Blockers) > 0 {
		c.standup.Blockers = req.Blockers
	}
	c.standup.Mood = req.Mood
	c.standup.Notes = req.Notes
	c.standup.CompletedAt = &completedAt
	return c.standup, nil
}

func (c *ScriptedCoach) SkipStandup(context.Context, string) (entity.DailyStandup, error) {
	if err := c.op("skip_standup"); err != nil {
		return entity.DailyStandup{}, err
	}
	c.standup.Status = entity.StandupSkipped
	return c.standup, nil
}

func (c *ScriptedCoach) ConvertBlockerToTask(_ context.Context, blockerID string) (entity.DailyStandup, error) {
	if err := c.op("convert_blocker"); err != nil {
		return entity.DailyStandup{}, err
	}
	for i := range c.standup.Blockers {
		if c.standup.Blockers[i].ID == blockerID {
			c.standup.Blockers[i].ConvertedToTask = true
			c.standup.Blockers[i].TaskID = "task-" + blockerID
		}
	}
	return c.standup, nil
}

func (c *ScriptedCoach) FetchInterventions(context.Context) ([]entity.Intervention, error) {
	return c.interventions, c.op("fetch_interventions")
}

func (c *ScriptedCoach) AcknowledgeIntervention(_ context.Context, id string, action entity.AckAction, reason string) (entity.Intervention, error) {
	if err := c.op("acknowledge_intervention"); err != nil {
		return entity.Intervention{}, err
	}
	for i := range c.interventions {
		if c.interventions[i].ID != id {
			continue
		}
		acknowledgedAt := c.now()
		c.interventions[i].Acknowledged = true
		c.interventions[i].AcknowledgedAt = &acknowledgedAt
		c.interventions[i].Overridden = action == entity.ActionOverride
		c.interventions[i].OverrideReason = reason
		return c.interventions[i], nil
	}
	return entity.Intervention{}, &remote.RemoteFailure{
		Operation: "acknowledge_intervention",
		Cause:     errors.New("unknown intervention " + id),
	}
}

func (c *ScriptedCoach) StartCeremony(_ context.Context, ceremonyType entity.CeremonyType) (entity.SprintCeremony, error) {
	if err := c.op("start_ceremony"); err != nil {
		return entity.SprintCeremony{}, err
	}
	return entity.SprintCeremony{
		ID:     "cer-" + string(ceremonyType),
		Type:   ceremonyType,
		Status: entity.CeremonyInProgress,
	}, nil
}

func (c *ScriptedCoach) completeCeremony(op string, ceremonyType entity.CeremonyType) (entity.SprintCeremony, error) {
	if err := c.op(op); err != nil {
		return entity.SprintCeremony{}, err
	}
	completedAt := c.now()
	return entity.SprintCeremony{
		ID:          "cer-" + string(ceremonyType),
		Type:        ceremonyType,
		Status:      entity.CeremonyCompleted,
		CompletedAt: &completedAt,
	}, nil
}

func (c *ScriptedCoach) CompleteSprintPlanning(context.Context, remote.PlanningRequest) (entity.SprintCeremony, error) {
	return c.completeCeremony("complete_planning", entity.CeremonyPlanning)
}

func (c *ScriptedCoach) CompleteSprintReview(context.Context, remote.ReviewRequest) (entity.SprintCeremony, error) {
	return c.completeCeremony("complete_review", entity.CeremonyReview)
}

func (c *ScriptedCoach) CompleteRetrospective(context.Context, remote.RetrospectiveRequest) (entity.SprintCeremony, error) {
	return c.completeCeremony("complete_retrospective", entity.CeremonyRetrospective)
}

func (c *ScriptedCoach) FetchLifeWheel(context.Context) (entity.LifeWheelMetrics, error) {
	return c.wheel, c.op("fetch_life_wheel")
}

func (c *ScriptedCoach) AddRecoveryTask(_ context.Context, task entity.RecoveryTask) (entity.LifeWheelMetrics, error) {
	if err := c.op("add_recovery_task"); err != nil {
		return entity.LifeWheelMetrics{}, err
	}
	for i := range c.wheel.Dimensions {
		if c.wheel.Dimensions[i].Dimension == task.Dimension {
			c.wheel.Dimensions[i].IsNeglected = false
		}
	}
	return c.wheel, nil
}

func (c *ScriptedCoach) ProcessIntake(_ context.Context, req remote.IntakeRequest) (remote.IntakeDraft, error) {
	if err := c.op("process_intake"); err != nil {
		return remote.IntakeDraft{}, err
	}
	return remote.IntakeDraft{ID: "draft-1", Type: req.Type, Title: req.Content}, nil
}

func (c *ScriptedCoach) FetchSettings(context.Context) (entity.Settings, error) {
	return c.prefs, c.op("fetch_settings")
}

func (c *ScriptedCoach) UpdateSettings(_ context.Context, patch remote.SettingsPatch) (entity.Settings, error) {
	if err := c.op("update_settings"); err != nil {
		return entity.Settings{}, err
	}
	if patch.CoachTone != nil {
		c.prefs.CoachTone = *patch.CoachTone
	}
	if patch.SprintLengthDays != nil {
		c.prefs.SprintLengthDays = *patch.SprintLengthDays
	}
	if patch.MaxDailyCapacity != nil {
		c.prefs.MaxDailyCapacity = *patch.MaxDailyCapacity
	}
	return c.prefs, nil
}

func (c *ScriptedCoach) FetchMessages(context.Context) ([]entity.CoachMessage, error) {
	return c.messages, c.op("fetch_messages")
}

func (c *ScriptedCoach) FetchAnalytics(_ context.Context, period string) (remote.AnalyticsReport, error) {
	if err := c.op("fetch_analytics"); err != nil {
		return remote.AnalyticsReport{}, err
	}
	return remote.AnalyticsReport{Period: period}, nil
}
