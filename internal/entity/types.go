package entity

import "time"

// Kind identifies an entity slot in the cache. Each kind holds exactly one
// canonical value at a time.
type Kind string

const (
	KindVelocity      Kind = "velocity"
	KindSprintHealth  Kind = "sprint_health"
	KindStandup       Kind = "standup"
	KindInterventions Kind = "interventions"
	KindCeremonies    Kind = "ceremonies"
	KindLifeWheel     Kind = "life_wheel"
	KindMessages      Kind = "messages"
	KindSettings      Kind = "settings"
)

// ValidKinds defines the entity kinds the cache will accept.
var ValidKinds = map[Kind]bool{
	KindVelocity:      true,
	KindSprintHealth:  true,
	KindStandup:       true,
	KindInterventions: true,
	KindCeremonies:    true,
	KindLifeWheel:     true,
	KindMessages:      true,
	KindSettings:      true,
}

// Trend describes the direction of a metric across recent sprints.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// SprintVelocityRecord is one closed sprint's contribution to the velocity
// history. History is chronological and append-only once a sprint closes.
type SprintVelocityRecord struct {
	SprintID     string    `json:"sprint_id"`
	SprintNumber int       `json:"sprint_number"`
	Points       int       `json:"points"`
	ClosedAt     time.Time `json:"closed_at"`
}

// VelocityMetrics summarizes points committed and completed over the recent
// sprint window. Replaced wholesale on each fetch; the only client-side
// mutation is the optimistic sprint-commit update, which must be reconciled
// or rolled back.
type VelocityMetrics struct {
	CurrentVelocity   float64                `json:"current_velocity"`
	AverageVelocity   float64                `json:"average_velocity"`
	PersonalBest      float64                `json:"personal_best"`
	VelocityTrend     Trend                  `json:"velocity_trend"`
	ProjectedCapacity float64                `json:"projected_capacity"`
	VelocityHistory   []SprintVelocityRecord `json:"velocity_history"`
}

// HealthStatus classifies sprint progress against the linear pacing baseline.
type HealthStatus string

const (
	HealthOnTrack HealthStatus = "on_track"
	HealthAhead   HealthStatus = "ahead"
	HealthAtRisk  HealthStatus = "at_risk"
	HealthBehind  HealthStatus = "behind"
)

// BurndownTrend classifies how the remaining work is tracking.
type BurndownTrend string

const (
	BurndownHealthy    BurndownTrend = "healthy"
	BurndownConcerning BurndownTrend = "concerning"
	BurndownCritical   BurndownTrend = "critical"
)

// SprintHealth is a point-in-time derived view of the current sprint.
// Never locally mutated - always fetched fresh or derived via
// DeriveSprintHealth.
type SprintHealth struct {
	DayOfSprint          int           `json:"day_of_sprint"`
	TotalDays            int           `json:"total_days"`
	CompletedPoints      int           `json:"completed_points"`
	RemainingPoints      int           `json:"remaining_points"`
	CommittedPoints      int           `json:"committed_points"`
	CompletionPercentage float64       `json:"completion_percentage"`
	ExpectedPercentage   float64       `json:"expected_percentage"`
	HealthStatus         HealthStatus  `json:"health_status"`
	BurndownTrend        BurndownTrend `json:"burndown_trend"`
}

// StandupStatus is the lifecycle state of a daily standup.
// Completed and skipped are terminal.
type StandupStatus string

const (
	StandupPending   StandupStatus = "pending"
	StandupCompleted StandupStatus = "completed"
	StandupSkipped   StandupStatus = "skipped"
)

// Terminal reports whether the status admits no further transition.
func (s StandupStatus) Terminal() bool {
	return s == StandupCompleted || s == StandupSkipped
}

// StandupTask is a task reference inside a standup (yesterday's completions
// or today's focus).
type StandupTask struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Points int    `json:"points"`
}

// StandupBlocker is an impediment raised during a standup. Conversion to a
// task is monotonic - a converted blocker never reverts to open.
type StandupBlocker struct {
	ID              string `json:"id"`
	Description     string `json:"description"`
	ConvertedToTask bool   `json:"converted_to_task"`
	TaskID          string `json:"task_id,omitempty"`
}

// DailyStandup is the one-per-calendar-day check-in. Created lazily on first
// access; status transitions are one-way (pending to completed or skipped).
type DailyStandup struct {
	ID                 string           `json:"id"`
	Date               string           `json:"date"` // YYYY-MM-DD
	Status             StandupStatus    `json:"status"`
	CompletedYesterday []StandupTask    `json:"completed_yesterday"`
	FocusToday         []StandupTask    `json:"focus_today"`
	Blockers           []StandupBlocker `json:"blockers"`
	Mood               string           `json:"mood,omitempty"`
	Notes              string           `json:"notes,omitempty"`
	CompletedAt        *time.Time       `json:"completed_at,omitempty"`
}

// InterventionType classifies how an intervention is presented.
type InterventionType string

const (
	InterventionAlert       InterventionType = "alert"
	InterventionWarning     InterventionType = "warning"
	InterventionNudge       InterventionType = "nudge"
	InterventionCelebration InterventionType = "celebration"
)

// Urgency ranks how pressing an intervention is. Positive marks
// celebrations, which have no "later".
type Urgency string

const (
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
	UrgencyPositive Urgency = "positive"
)

// Category names the coaching concern an intervention addresses.
type Category string

const (
	CategoryCapacity   Category = "capacity"
	CategoryBalance    Category = "balance"
	CategoryExecution  Category = "execution"
	CategoryMotivation Category = "motivation"
)

// InterventionDataType tags the type-specific payload on an intervention.
type InterventionDataType string

const (
	DataOvercommit        InterventionDataType = "overcommit"
	DataNeglect           InterventionDataType = "neglect"
	DataSprintRisk        InterventionDataType = "sprint_risk"
	DataVelocityMilestone InterventionDataType = "velocity_milestone"
)

// InterventionData is the tagged payload carried by an intervention. Only
// the fields for the tagged type are populated; the rest stay zero.
type InterventionData struct {
	Type InterventionDataType `json:"type"`

	// overcommit
	CommittedPoints int `json:"committed_points,omitempty"`
	CapacityPoints  int `json:"capacity_points,omitempty"`
	OverBy          int `json:"over_by,omitempty"`

	// neglect
	Dimension     string `json:"dimension,omitempty"`
	SprintsAtZero int    `json:"sprints_at_zero,omitempty"`

	// sprint_risk
	CompletionPercentage float64 `json:"completion_percentage,omitempty"`
	ExpectedPercentage   float64 `json:"expected_percentage,omitempty"`
	DaysRemaining        int     `json:"days_remaining,omitempty"`

	// velocity_milestone
	Milestone float64 `json:"milestone,omitempty"`
}

// Intervention is a coaching nudge created server-side and delivered via
// fetch. Once acknowledged the record is immutable and lives in history.
type Intervention struct {
	ID             string            `json:"id"`
	Type           InterventionType  `json:"type"`
	Urgency        Urgency           `json:"urgency"`
	Category       Category          `json:"category"`
	Title          string            `json:"title"`
	Message        string            `json:"message"`
	Data           *InterventionData `json:"data,omitempty"`
	Acknowledged   bool              `json:"acknowledged"`
	AcknowledgedAt *time.Time        `json:"acknowledged_at,omitempty"`
	Overridden     bool              `json:"overridden"`
	OverrideReason string            `json:"override_reason,omitempty"`
}

// AckAction is the way an intervention leaves the active set.
type AckAction string

const (
	ActionAcknowledge AckAction = "acknowledge"
	ActionOverride    AckAction = "override"
	ActionDefer       AckAction = "defer"
)

// ValidAckActions defines the allowed acknowledgement actions.
var ValidAckActions = map[AckAction]bool{
	ActionAcknowledge: true,
	ActionOverride:    true,
	ActionDefer:       true,
}

// CeremonyType names a sprint ceremony.
type CeremonyType string

const (
	CeremonyPlanning      CeremonyType = "planning"
	CeremonyStandup       CeremonyType = "standup"
	CeremonyMidcheck      CeremonyType = "midcheck"
	CeremonyReview        CeremonyType = "review"
	CeremonyRetrospective CeremonyType = "retrospective"
)

// ValidCeremonyTypes defines the allowed ceremony types.
var ValidCeremonyTypes = map[CeremonyType]bool{
	CeremonyPlanning:      true,
	CeremonyStandup:       true,
	CeremonyMidcheck:      true,
	CeremonyReview:        true,
	CeremonyRetrospective: true,
}

// CeremonyStatus is the lifecycle state of a ceremony. Monotonic:
// not_started, then in_progress, then completed. No regression.
type CeremonyStatus string

const (
	CeremonyNotStarted CeremonyStatus = "not_started"
	CeremonyInProgress CeremonyStatus = "in_progress"
	CeremonyCompleted  CeremonyStatus = "completed"
)

// SprintCeremony is one ceremony instance within the current sprint.
type SprintCeremony struct {
	ID           string         `json:"id"`
	Type         CeremonyType   `json:"type"`
	Status       CeremonyStatus `json:"status"`
	ScheduledFor *time.Time     `json:"scheduled_for,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// RecoveryTask is a suggested task to revive a neglected dimension.
type RecoveryTask struct {
	Title     string `json:"title"`
	Points    int    `json:"points"`
	Dimension string `json:"dimension"`
}

// DimensionMetric is one life-wheel dimension's share of recent effort.
type DimensionMetric struct {
	Dimension             string        `json:"dimension"`
	PercentageOfTotal     float64       `json:"percentage_of_total"`
	PointsThisSprint      int           `json:"points_this_sprint"`
	Trend                 Trend         `json:"trend"`
	IsNeglected           bool          `json:"is_neglected"`
	SprintsAtZero         int           `json:"sprints_at_zero"`
	SuggestedRecoveryTask *RecoveryTask `json:"suggested_recovery_task,omitempty"`
}

// LifeWheelMetrics scores how evenly effort spreads across life dimensions.
// Recomputed wholesale on fetch. NeglectedDimensions must equal exactly the
// set of dimensions flagged IsNeglected - see RecomputeNeglected.
type LifeWheelMetrics struct {
	BalanceScore        int               `json:"balance_score"` // 0-100
	Dimensions          []DimensionMetric `json:"dimensions"`
	NeglectedDimensions []string          `json:"neglected_dimensions"`
}

// MessageType classifies a coach message.
type MessageType string

const (
	MessageGreeting    MessageType = "greeting"
	MessageCelebration MessageType = "celebration"
	MessageSummary     MessageType = "summary"
	MessageNudge       MessageType = "nudge"
)

// Tone is the voice a coach message (or the coach overall) speaks in.
type Tone string

const (
	ToneNeutral     Tone = "neutral"
	ToneEncouraging Tone = "encouraging"
	ToneDirect      Tone = "direct"
	TonePlayful     Tone = "playful"
)

// MessageAction is an optional follow-up a message offers.
type MessageAction struct {
	Label   string `json:"label"`
	Command string `json:"command"`
}

// CoachMessage is one entry in the append-only coach feed.
type CoachMessage struct {
	ID        string          `json:"id"`
	Type      MessageType     `json:"type"`
	Tone      Tone            `json:"tone"`
	Title     string          `json:"title,omitempty"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Read      bool            `json:"read"`
	Actions   []MessageAction `json:"actions,omitempty"`
}

// Settings is the single mutable configuration record. Last write wins, no
// history.
type Settings struct {
	CoachTone               Tone           `json:"coach_tone" yaml:"coach_tone"`
	InterventionsEnabled    bool           `json:"interventions_enabled" yaml:"interventions_enabled"`
	DailyStandupTime        string         `json:"daily_standup_time" yaml:"daily_standup_time"` // HH:MM
	SprintLengthDays        int            `json:"sprint_length_days" yaml:"sprint_length_days"`
	MaxDailyCapacity        int            `json:"max_daily_capacity" yaml:"max_daily_capacity"`
	OvercommitThreshold     float64        `json:"overcommit_threshold" yaml:"overcommit_threshold"`
	OvercommitBuffer        int            `json:"overcommit_buffer" yaml:"overcommit_buffer"`
	DimensionAlertThreshold float64        `json:"dimension_alert_threshold" yaml:"dimension_alert_threshold"`
	DimensionPriorities     map[string]int `json:"dimension_priorities" yaml:"dimension_priorities"` // dimension id -> 1..10
}
