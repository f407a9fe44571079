package feed

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lifesprint/sensai/internal/entity"
)

// Trigger names a local state transition that synthesizes a coach message.
type Trigger string

const (
	TriggerAppOpened         Trigger = "app_opened"
	TriggerStandupCompleted  Trigger = "standup_completed"
	TriggerStandupSkipped    Trigger = "standup_skipped"
	TriggerSprintCommitted   Trigger = "sprint_committed"
	TriggerSprintReviewed    Trigger = "sprint_reviewed"
	TriggerRetroCompleted    Trigger = "retro_completed"
	TriggerRecoveryTaskAdded Trigger = "recovery_task_added"
)

// Snapshot is the slice of entity state Compose reads. Only the fields a
// trigger needs are consulted; the rest may stay zero.
type Snapshot struct {
	Health    *entity.SprintHealth
	TaskCount int
	Points    int
	Dimension string
	Mood      string
}

// celebrations are the candidate bodies for a completed standup. The picker
// chooses among them; tests assert set membership, not exact strings.
var celebrations = []string{
	"Standup done. That daily rhythm is how sprints get won.",
	"Checked in and locked in. See you at the board.",
	"Another standup in the books - momentum looks good.",
}

var titleCaser = cases.Title(language.English)

// Compose maps a trigger plus entity snapshot to a new message's type, tone,
// title, and body. Pure: same inputs and picker picks give the same output.
// The final return is false for a trigger Compose does not know, in which
// case no message should be synthesized.
//
// Tone rules for greetings follow sprint health - behind gets a direct
// nudge, ahead gets encouragement, everything else stays neutral.
func Compose(trigger Trigger, snap Snapshot, picker Picker) (entity.MessageType, entity.Tone, string, string, bool) {
	if picker == nil {
		picker = FirstPicker{}
	}

	switch trigger {
	case TriggerAppOpened:
		tone := entity.ToneNeutral
		body := "Welcome back. Your board is where you left it."
		if snap.Health != nil {
			switch snap.Health.HealthStatus {
			case entity.HealthBehind:
				tone = entity.ToneDirect
				body = fmt.Sprintf("You're at %.0f%% with %.0f%% expected. Pick one task and move it today.",
					snap.Health.CompletionPercentage, snap.Health.ExpectedPercentage)
			case entity.HealthAhead:
				tone = entity.ToneEncouraging
				body = "Ahead of pace. Keep the streak going."
			}
		}
		return entity.MessageGreeting, tone, "", body, true

	case TriggerStandupCompleted:
		body := celebrations[picker.Pick(len(celebrations))]
		return entity.MessageCelebration, entity.ToneEncouraging, "Standup complete", body, true

	case TriggerStandupSkipped:
		return entity.MessageNudge, entity.ToneNeutral, "",
			"Standup skipped. One line tomorrow still counts.", true

	case TriggerSprintCommitted:
		body := fmt.Sprintf("Sprint committed with %d tasks (%d points). Go get them.",
			snap.TaskCount, snap.Points)
		return entity.MessageCelebration, entity.ToneEncouraging, "Sprint planned", body, true

	case TriggerSprintReviewed:
		body := "Review closed. Completed work is in the books."
		if snap.Health != nil {
			body = fmt.Sprintf("Review closed at %.0f%% completion. Completed work is in the books.",
				snap.Health.CompletionPercentage)
		}
		return entity.MessageSummary, entity.ToneNeutral, "Sprint review", body, true

	case TriggerRetroCompleted:
		return entity.MessageSummary, entity.ToneNeutral, "Retrospective",
			"Retro captured. Learnings feed the next planning.", true

	case TriggerRecoveryTaskAdded:
		dimension := titleCaser.String(snap.Dimension)
		body := fmt.Sprintf("%s is back on the board. Small steps reopen a dimension.", dimension)
		return entity.MessageNudge, entity.ToneEncouraging, "Recovery scheduled", body, true

	default:
		return "", "", "", "", false
	}
}
