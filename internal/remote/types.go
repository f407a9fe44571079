package remote

import (
	"context"

	"github.com/lifesprint/sensai/internal/entity"
)

// CompleteStandupRequest carries everything a finished standup reports.
type CompleteStandupRequest struct {
	CompletedYesterday []entity.StandupTask    `json:"completed_yesterday"`
	FocusToday         []entity.StandupTask    `json:"focus_today"`
	Blockers           []entity.StandupBlocker `json:"blockers"`
	Mood               string                  `json:"mood,omitempty"`
	Notes              string                  `json:"notes,omitempty"`
}

// PlanningRequest commits the selected tasks for the sprint.
type PlanningRequest struct {
	SelectedTaskIDs []string `json:"selected_task_ids"`
	Notes           string   `json:"notes,omitempty"`
}

// ReviewRequest closes out the sprint review.
type ReviewRequest struct {
	Notes string `json:"notes,omitempty"`
}

// RetrospectiveRequest records what worked, what blocked, and what was
// learned.
type RetrospectiveRequest struct {
	Worked    []string `json:"worked"`
	Blocked   []string `json:"blocked"`
	Learnings []string `json:"learnings"`
}

// DraftType classifies what the intake pipeline proposes.
type DraftType string

const (
	DraftTask      DraftType = "task"
	DraftChallenge DraftType = "challenge"
	DraftEvent     DraftType = "event"
	DraftBill      DraftType = "bill"
	DraftNote      DraftType = "note"
)

// IntakeRequest sends free-text input for structuring.
type IntakeRequest struct {
	Type     DraftType         `json:"type"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IntakeDraft is the server's structured proposal, awaiting user approval.
type IntakeDraft struct {
	ID     string            `json:"id"`
	Type   DraftType         `json:"type"`
	Title  string            `json:"title"`
	Points int               `json:"points,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// SettingsPatch is a partial settings update. Nil fields are left unchanged
// server-side.
type SettingsPatch struct {
	CoachTone               *entity.Tone   `json:"coach_tone,omitempty"`
	InterventionsEnabled    *bool          `json:"interventions_enabled,omitempty"`
	DailyStandupTime        *string        `json:"daily_standup_time,omitempty"`
	SprintLengthDays        *int           `json:"sprint_length_days,omitempty"`
	MaxDailyCapacity        *int           `json:"max_daily_capacity,omitempty"`
	OvercommitThreshold     *float64       `json:"overcommit_threshold,omitempty"`
	OvercommitBuffer        *int           `json:"overcommit_buffer,omitempty"`
	DimensionAlertThreshold *float64       `json:"dimension_alert_threshold,omitempty"`
	DimensionPriorities     map[string]int `json:"dimension_priorities,omitempty"`
}

// AnalyticsReport summarizes a trailing period.
type AnalyticsReport struct {
	Period          string  `json:"period"`
	CompletedPoints int     `json:"completed_points"`
	CompletedTasks  int     `json:"completed_tasks"`
	CompletionRate  float64 `json:"completion_rate"`
	MoodTrend       string  `json:"mood_trend,omitempty"`
}

// Coach is the typed gateway to the external coaching backend. Pure I/O
// boundary: every operation takes plain values and returns the canonical
// server representation of the affected entity, never a diff. No retries at
// this layer - reconciliation is the caller's job.
//
// Every failure surfaces as *RemoteFailure.
type Coach interface {
	FetchVelocity(ctx context.Context) (entity.VelocityMetrics, error)
	FetchStandup(ctx context.Context, date string) (entity.DailyStandup, error)
	CompleteStandup(ctx context.Context, req CompleteStandupRequest) (entity.DailyStandup, error)
	SkipStandup(ctx context.Context, reason string) (entity.DailyStandup, error)
	ConvertBlockerToTask(ctx context.Context, blockerID string) (entity.DailyStandup, error)

	FetchInterventions(ctx context.Context) ([]entity.Intervention, error)
	AcknowledgeIntervention(ctx context.Context, id string, action entity.AckAction, reason string) (entity.Intervention, error)

	StartCeremony(ctx context.Context, ceremonyType entity.CeremonyType) (entity.SprintCeremony, error)
	CompleteSprintPlanning(ctx context.Context, req PlanningRequest) (entity.SprintCeremony, error)
	CompleteSprintReview(ctx context.Context, req ReviewRequest) (entity.SprintCeremony, error)
	CompleteRetrospective(ctx context.Context, req RetrospectiveRequest) (entity.SprintCeremony, error)

	FetchLifeWheel(ctx context.Context) (entity.LifeWheelMetrics, error)
	AddRecoveryTask(ctx context.Context, task entity.RecoveryTask) (entity.LifeWheelMetrics, error)

	ProcessIntake(ctx context.Context, req IntakeRequest) (IntakeDraft, error)

	FetchSettings(ctx context.Context) (entity.Settings, error)
	UpdateSettings(ctx context.Context, patch SettingsPatch) (entity.Settings, error)

	FetchMessages(ctx context.Context) ([]entity.CoachMessage, error)
	FetchAnalytics(ctx context.Context, period string) (AnalyticsReport, error)
}
