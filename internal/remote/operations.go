package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/lifesprint/sensai/internal/entity"
)

// FetchVelocity retrieves the current velocity metrics.
func (c *Client) FetchVelocity(ctx context.Context) (entity.VelocityMetrics, error) {
	var out entity.VelocityMetrics
	err := c.call(ctx, "fetch_velocity", http.MethodGet, "/velocity", nil, &out)
	return out, err
}

// FetchStandup retrieves (lazily creating) the standup for a calendar day.
func (c *Client) FetchStandup(ctx context.Context, date string) (entity.DailyStandup, error) {
	var out entity.DailyStandup
	err := c.call(ctx, "fetch_standup", http.MethodGet, "/standups/"+url.PathEscape(date), nil, &out)
	return out, err
}

// CompleteStandup marks today's standup completed with the reported items.
func (c *Client) CompleteStandup(ctx context.Context, req CompleteStandupRequest) (entity.DailyStandup, error) {
	var out entity.DailyStandup
	err := c.call(ctx, "complete_standup", http.MethodPost, "/standups/today/complete", req, &out)
	return out, err
}

// SkipStandup marks today's standup skipped.
func (c *Client) SkipStandup(ctx context.Context, reason string) (entity.DailyStandup, error) {
	var out entity.DailyStandup
	body := map[string]string{"reason": reason}
	err := c.call(ctx, "skip_standup", http.MethodPost, "/standups/today/skip", body, &out)
	return out, err
}

// ConvertBlockerToTask promotes a standup blocker into a tracked task.
func (c *Client) ConvertBlockerToTask(ctx context.Context, blockerID string) (entity.DailyStandup, error) {
	var out entity.DailyStandup
	err := c.call(ctx, "convert_blocker", http.MethodPost, "/blockers/"+url.PathEscape(blockerID)+"/convert", nil, &out)
	return out, err
}

// FetchInterventions retrieves the active intervention set.
func (c *Client) FetchInterventions(ctx context.Context) ([]entity.Intervention, error) {
	var out []entity.Intervention
	err := c.call(ctx, "fetch_interventions", http.MethodGet, "/interventions", nil, &out)
	return out, err
}

// AcknowledgeIntervention records how an intervention was handled.
func (c *Client) AcknowledgeIntervention(ctx context.Context, id string, action entity.AckAction, reason string) (entity.Intervention, error) {
	var out entity.Intervention
	body := map[string]string{"action": string(action), "reason": reason}
	err := c.call(ctx, "acknowledge_intervention", http.MethodPost, "/interventions/"+url.PathEscape(id)+"/acknowledge", body, &out)
	return out, err
}

// StartCeremony opens a ceremony of the given type for the current sprint.
func (c *Client) StartCeremony(ctx context.Context, ceremonyType entity.CeremonyType) (entity.SprintCeremony, error) {
	var out entity.SprintCeremony
	body := map[string]string{"type": string(ceremonyType)}
	err := c.call(ctx, "start_ceremony", http.MethodPost, "/ceremonies", body, &out)
	return out, err
}

// CompleteSprintPlanning commits the planned tasks and closes planning.
func (c *Client) CompleteSprintPlanning(ctx context.Context, req PlanningRequest) (entity.SprintCeremony, error) {
	var out entity.SprintCeremony
	err := c.call(ctx, "complete_planning", http.MethodPost, "/ceremonies/planning/complete", req, &out)
	return out, err
}

// CompleteSprintReview closes the sprint review.
func (c *Client) CompleteSprintReview(ctx context.Context, req ReviewRequest) (entity.SprintCeremony, error) {
	var out entity.SprintCeremony
	err := c.call(ctx, "complete_review", http.MethodPost, "/ceremonies/review/complete", req, &out)
	return out, err
}

// CompleteRetrospective closes the retrospective.
func (c *Client) CompleteRetrospective(ctx context.Context, req RetrospectiveRequest) (entity.SprintCeremony, error) {
	var out entity.SprintCeremony
	err := c.call(ctx, "complete_retrospective", http.MethodPost, "/ceremonies/retrospective/complete", req, &out)
	return out, err
}

// FetchLifeWheel retrieves the life-wheel balance metrics.
func (c *Client) FetchLifeWheel(ctx context.Context) (entity.LifeWheelMetrics, error) {
	var out entity.LifeWheelMetrics
	err := c.call(ctx, "fetch_life_wheel", http.MethodGet, "/life-wheel", nil, &out)
	return out, err
}

// AddRecoveryTask schedules a recovery task for a neglected dimension and
// returns the refreshed wheel.
func (c *Client) AddRecoveryTask(ctx context.Context, task entity.RecoveryTask) (entity.LifeWheelMetrics, error) {
	var out entity.LifeWheelMetrics
	err := c.call(ctx, "add_recovery_task", http.MethodPost, "/life-wheel/recovery-tasks", task, &out)
	return out, err
}

// ProcessIntake sends free-text input for structuring into a draft.
func (c *Client) ProcessIntake(ctx context.Context, req IntakeRequest) (IntakeDraft, error) {
	var out IntakeDraft
	err := c.call(ctx, "process_intake", http.MethodPost, "/intake", req, &out)
	return out, err
}

// FetchSettings retrieves the coach settings.
func (c *Client) FetchSettings(ctx context.Context) (entity.Settings, error) {
	var out entity.Settings
	err := c.call(ctx, "fetch_settings", http.MethodGet, "/settings", nil, &out)
	return out, err
}

// UpdateSettings applies a partial settings update, last write wins.
func (c *Client) UpdateSettings(ctx context.Context, patch SettingsPatch) (entity.Settings, error) {
	var out entity.Settings
	err := c.call(ctx, "update_settings", http.MethodPatch, "/settings", patch, &out)
	return out, err
}

// FetchMessages retrieves the server-generated coach messages.
func (c *Client) FetchMessages(ctx context.Context) ([]entity.CoachMessage, error) {
	var out []entity.CoachMessage
	err := c.call(ctx, "fetch_messages", http.MethodGet, "/messages", nil, &out)
	return out, err
}

// FetchAnalytics retrieves a trailing-period summary, e.g. "30d".
func (c *Client) FetchAnalytics(ctx context.Context, period string) (AnalyticsReport, error) {
	var out AnalyticsReport
	err := c.call(ctx, "fetch_analytics", http.MethodGet, "/analytics?period="+url.QueryEscape(period), nil, &out)
	return out, err
}
