package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/lifesprint/sensai/internal/entity"
)

func renderStandup(w io.Writer, s entity.DailyStandup) {
	fmt.Fprintln(w, styleTitle.Render(fmt.Sprintf("Standup %s", s.Date)), styleMuted.Render(fmt.Sprintf("[%s]", s.Status)))
	if len(s.FocusToday) > 0 {
		fmt.Fprintln(w, styleSection.Render("Today"))
		for _, task := range s.FocusToday {
			fmt.Fprintf(w, "  - %s (%dpt)\n", task.Title, task.Points)
		}
	}
	if len(s.CompletedYesterday) > 0 {
		fmt.Fprintln(w, styleSection.Render("Yesterday"))
		for _, task := range s.CompletedYesterday {
			fmt.Fprintln(w, styleGood.Render(fmt.Sprintf("  ✓ %s", task.Title)))
		}
	}
	if len(s.Blockers) > 0 {
		fmt.Fprintln(w, styleSection.Render("Blockers"))
		for _, b := range s.Blockers {
			line := fmt.Sprintf("  ! %s", b.Description)
			if b.ConvertedToTask {
				line += styleMuted.Render(" (tracked as task)")
			}
			fmt.Fprintln(w, styleWarn.Render(line))
		}
	}
	if s.Mood != "" {
		fmt.Fprintln(w, styleMuted.Render("mood: "+s.Mood))
	}
}

func renderCeremony(w io.Writer, c entity.SprintCeremony) {
	status := string(c.Status)
	style := styleMuted
	if c.Status == entity.CeremonyCompleted {
		style = styleGood
	}
	fmt.Fprintf(w, "%s %s\n", styleTitle.Render(string(c.Type)), style.Render("["+status+"]"))
	if c.CompletedAt != nil {
		fmt.Fprintln(w, styleMuted.Render("completed "+c.CompletedAt.Format("2006-01-02 15:04")))
	}
}

func renderInterventions(w io.Writer, title string, interventions []entity.Intervention) {
	fmt.Fprintln(w, styleSection.Render(title))
	if len(interventions) == 0 {
		fmt.Fprintln(w, styleMuted.Render("  (none)"))
		return
	}
	for _, iv := range interventions {
		urgency := urgencyStyle(string(iv.Urgency)).Render(strings.ToUpper(string(iv.Urgency)))
		fmt.Fprintf(w, "  %s %s %s\n", urgency, styleTitle.Render(iv.Title), styleMuted.Render("("+iv.ID+")"))
		if iv.Message != "" {
			fmt.Fprintf(w, "      %s\n", iv.Message)
		}
	}
}

func renderMessages(w io.Writer, messages []entity.CoachMessage) {
	if len(messages) == 0 {
		fmt.Fprintln(w, styleMuted.Render("no messages"))
		return
	}
	for _, m := range messages {
		marker := " "
		if !m.Read {
			marker = styleUnread.Render("●")
		}
		fmt.Fprintf(w, "%s %s %s\n", marker, styleTitle.Render(m.Title), styleMuted.Render(m.Timestamp.Format("Jan 2 15:04")))
		fmt.Fprintf(w, "  %s\n", m.Message)
	}
}

func renderWheel(w io.Writer, wheel entity.LifeWheelMetrics) {
	fmt.Fprintln(w, styleTitle.Render(fmt.Sprintf("Life balance: %d/100", wheel.BalanceScore)))
	for _, d := range wheel.Dimensions {
		bar := strings.Repeat("█", int(d.PercentageOfTotal/5))
		line := fmt.Sprintf("  %-12s %5.1f%% %s", d.Dimension, d.PercentageOfTotal, bar)
		if d.IsNeglected {
			fmt.Fprintln(w, styleBad.Render(line+"  neglected"))
			continue
		}
		fmt.Fprintln(w, line)
	}
}

func renderHealth(w io.Writer, h entity.SprintHealth) {
	status := healthStyle(string(h.HealthStatus)).Render(string(h.HealthStatus))
	fmt.Fprintf(w, "%s day %d/%d · %d/%d points · %s\n",
		styleTitle.Render("Sprint"), h.DayOfSprint, h.TotalDays,
		h.CompletedPoints, h.CommittedPoints, status)
}

func renderSettings(w io.Writer, s entity.Settings) {
	fmt.Fprintln(w, styleSection.Render("Settings"))
	fmt.Fprintf(w, "  coach_tone: %s\n", s.CoachTone)
	fmt.Fprintf(w, "  interventions_enabled: %v\n", s.InterventionsEnabled)
	fmt.Fprintf(w, "  daily_standup_time: %s\n", s.DailyStandupTime)
	fmt.Fprintf(w, "  sprint_length_days: %d\n", s.SprintLengthDays)
	fmt.Fprintf(w, "  max_daily_capacity: %d\n", s.MaxDailyCapacity)
	fmt.Fprintf(w, "  overcommit_threshold: %.2f\n", s.OvercommitThreshold)
}
