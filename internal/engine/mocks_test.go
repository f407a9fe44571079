package engine

import (
	"context"
	"errors"

	"github.com/lifesprint/sensai/internal/entity"
	"github.com/lifesprint/sensai/internal/remote"
)

// fakeCoach is a scripted remote.Coach. Each operation returns the staged
// value, or a RemoteFailure when its fail flag is set, and counts calls so
// tests can assert which operations hit the network.
type fakeCoach struct {
	velocity      entity.VelocityMetrics
	standup       entity.DailyStandup
	interventions []entity.Intervention
	ceremony      entity.SprintCeremony
	wheel         entity.LifeWheelMetrics
	settings      entity.Settings
	messages      []entity.CoachMessage
	draft         remote.IntakeDraft
	analytics     remote.AnalyticsReport

	failOps map[string]bool
	calls   map[string]int

	// ackHook runs inside AcknowledgeIntervention before the scripted
	// result, standing in for work that happens while the call is in flight.
	ackHook func()
}

func newFakeCoach() *fakeCoach {
	return &fakeCoach{
		failOps: make(map[string]bool),
		calls:   make(map[string]int),
	}
}

func (f *fakeCoach) op(name string) error {
	f.calls[name]++
	if f.failOps[name] {
		return &remote.RemoteFailure{Operation: name, Cause: errors.New("scripted failure")}
	}
	return nil
}

func (f *fakeCoach) FetchVelocity(context.Context) (entity.VelocityMetrics, error) {
	return f.velocity, f.op("fetch_velocity")
}

func (f *fakeCoach) FetchStandup(context.Context, string) (entity.DailyStandup, error) {
	return f.standup, f.op("fetch_standup")
}

func (f *fakeCoach) CompleteStandup(_ context.Context, req remote.CompleteStandupRequest) (entity.DailyStandup, error) {
	if err := f.op("complete_standup"); err != nil {
		return entity.DailyStandup{}, err
	}
	out := f.standup
	out.Status = entity.StandupCompleted
	out.CompletedYesterday = req.CompletedYesterday
	out.FocusToday = req.FocusToday
	out.Blockers = req.Blockers
	out.Mood = req.Mood
	out.Notes = req.Notes
	completedAt := fixedNow
	out.CompletedAt = &completedAt
	return out, nil
}

func (f *fakeCoach) SkipStandup(context.Context, string) (entity.DailyStandup, error) {
	if err := f.op("skip_standup"); err != nil {
		return entity.DailyStandup{}, err
	}
	out := f.standup
	out.Status = entity.StandupSkipped
	return out, nil
}

func (f *fakeCoach) ConvertBlockerToTask(_ context.Context, blockerID string) (entity.DailyStandup, error) {
	if err := f.op("convert_blocker"); err != nil {
		return entity.DailyStandup{}, err
	}
	out := f.standup
	blockers := make([]entity.StandupBlocker, len(out.Blockers))
	copy(blockers, out.Blockers)
	for i := range blockers {
		if blockers[i].ID == blockerID {
			blockers[i].ConvertedToTask = true
			blockers[i].TaskID = "task-" + blockerID
		}
	}
	out.Blockers = blockers
	return out, nil
}

func (f *fakeCoach) FetchInterventions(context.Context) ([]entity.Intervention, error) {
	return f.interventions, f.op("fetch_interventions")
}

func (f *fakeCoach) AcknowledgeIntervention(_ context.Context, id string, action entity.AckAction, reason string) (entity.Intervention, error) {
	if f.ackHook != nil {
		f.ackHook()
	}
	if err := f.op("acknowledge_intervention"); err != nil {
		return entity.Intervention{}, err
	}
	for _, intv := range f.interventions {
		if intv.ID == id {
			acknowledgedAt := fixedNow
			intv.Acknowledged = true
			intv.AcknowledgedAt = &acknowledgedAt
			intv.Overridden = action == entity.ActionOverride
			intv.OverrideReason = reason
			return intv, nil
		}
	}
	return entity.Intervention{}, &remote.RemoteFailure{Operation: "acknowledge_intervention", Cause: errors.New("not found")}
}

func (f *fakeCoach) StartCeremony(_ context.Context, ceremonyType entity.CeremonyType) (entity.SprintCeremony, error) {
	if err := f.op("start_ceremony"); err != nil {
		return entity.SprintCeremony{}, err
	}
	out := f.ceremony
	if out.ID == "" {
		out.ID = "cer-" + string(ceremonyType)
	}
	out.Type = ceremonyType
	out.Status = entity.CeremonyInProgress
	return out, nil
}

func (f *fakeCoach) completeCeremony(op string, ceremonyType entity.CeremonyType) (entity.SprintCeremony, error) {
	if err := f.op(op); err != nil {
		return entity.SprintCeremony{}, err
	}
	completedAt := fixedNow
	return entity.SprintCeremony{
		ID:          "cer-" + string(ceremonyType),
		Type:        ceremonyType,
		Status:      entity.CeremonyCompleted,
		CompletedAt: &completedAt,
	}, nil
}

func (f *fakeCoach) CompleteSprintPlanning(context.Context, remote.PlanningRequest) (entity.SprintCeremony, error) {
	return f.completeCeremony("complete_planning", entity.CeremonyPlanning)
}

func (f *fakeCoach) CompleteSprintReview(context.Context, remote.ReviewRequest) (entity.SprintCeremony, error) {
	return f.completeCeremony("complete_review", entity.CeremonyReview)
}

func (f *fakeCoach) CompleteRetrospective(context.Context, remote.RetrospectiveRequest) (entity.SprintCeremony, error) {
	return f.completeCeremony("complete_retrospective", entity.CeremonyRetrospective)
}

func (f *fakeCoach) FetchLifeWheel(context.Context) (entity.LifeWheelMetrics, error) {
	return f.wheel, f.op("fetch_life_wheel")
}

func (f *fakeCoach) AddRecoveryTask(context.Context, entity.RecoveryTask) (entity.LifeWheelMetrics, error) {
	return f.wheel, f.op("add_recovery_task")
}

func (f *fakeCoach) ProcessIntake(context.Context, remote.IntakeRequest) (remote.IntakeDraft, error) {
	return f.draft, f.op("process_intake")
}

func (f *fakeCoach) FetchSettings(context.Context) (entity.Settings, error) {
	return f.settings, f.op("fetch_settings")
}

func (f *fakeCoach) UpdateSettings(context.Context, remote.SettingsPatch) (entity.Settings, error) {
	return f.settings, f.op("update_settings")
}

func (f *fakeCoach) FetchMessages(context.Context) ([]entity.CoachMessage, error) {
	return f.messages, f.op("fetch_messages")
}

func (f *fakeCoach) FetchAnalytics(_ context.Context, period string) (remote.AnalyticsReport, error) {
	return f.analytics, f.op("fetch_analytics")
}
