package entity

// DefaultVelocityWindow is the trailing sprint count used for the average
// velocity derivation when no window is configured.
const DefaultVelocityWindow = 6

// DefaultSprintLengthDays is the sprint length assumed before settings have
// been fetched.
const DefaultSprintLengthDays = 14

// AverageVelocity computes the mean points of the last window entries of a
// chronological velocity history. A history shorter than the window averages
// what is there; an empty history averages to 0.
//
// VelocityMetrics.AverageVelocity must never silently diverge from this -
// callers reconcile fetched metrics against it.
func AverageVelocity(history []SprintVelocityRecord, window int) float64 {
	if window <= 0 {
		window = DefaultVelocityWindow
	}
	if len(history) == 0 {
		return 0
	}
	start := len(history) - window
	if start < 0 {
		start = 0
	}
	total := 0
	for _, rec := range history[start:] {
		total += rec.Points
	}
	return float64(total) / float64(len(history)-start)
}

// Pacing thresholds, in percentage points of deviation from the linear
// baseline. A sprint within aheadMargin of the baseline is on track.
const (
	aheadMargin      = 10.0
	atRiskMargin     = 10.0
	behindMargin     = 25.0
	concerningMargin = 10.0
	criticalMargin   = 30.0
)

// DeriveSprintHealth computes the point-in-time sprint view from the raw
// counters. completionPercentage is completedPoints/committedPoints*100, or 0
// when nothing is committed. expectedPercentage is the linear pacing
// baseline dayOfSprint/totalDays*100.
func DeriveSprintHealth(dayOfSprint, totalDays, completedPoints, committedPoints int) SprintHealth {
	h := SprintHealth{
		DayOfSprint:     dayOfSprint,
		TotalDays:       totalDays,
		CompletedPoints: completedPoints,
		CommittedPoints: committedPoints,
		RemainingPoints: committedPoints - completedPoints,
	}
	if h.RemainingPoints < 0 {
		h.RemainingPoints = 0
	}
	if committedPoints > 0 {
		h.CompletionPercentage = float64(completedPoints) / float64(committedPoints) * 100
	}
	if totalDays > 0 {
		h.ExpectedPercentage = float64(dayOfSprint) / float64(totalDays) * 100
	}

	deviation := h.CompletionPercentage - h.ExpectedPercentage
	switch {
	case deviation >= aheadMargin:
		h.HealthStatus = HealthAhead
	case deviation >= -atRiskMargin:
		h.HealthStatus = HealthOnTrack
	case deviation >= -behindMargin:
		h.HealthStatus = HealthAtRisk
	default:
		h.HealthStatus = HealthBehind
	}

	switch {
	case deviation >= -concerningMargin:
		h.BurndownTrend = BurndownHealthy
	case deviation >= -criticalMargin:
		h.BurndownTrend = BurndownConcerning
	default:
		h.BurndownTrend = BurndownCritical
	}

	return h
}

// RecomputeNeglected rebuilds NeglectedDimensions from the IsNeglected flags,
// preserving dimension order. The derived set is never maintained
// incrementally.
func (m *LifeWheelMetrics) RecomputeNeglected() {
	neglected := make([]string, 0, len(m.Dimensions))
	for _, d := range m.Dimensions {
		if d.IsNeglected {
			neglected = append(neglected, d.Dimension)
		}
	}
	m.NeglectedDimensions = neglected
}

// UnreadCount counts unread messages. Always recomputed from the list, never
// tracked by incremental arithmetic, so the counter cannot drift.
func UnreadCount(messages []CoachMessage) int {
	n := 0
	for _, m := range messages {
		if !m.Read {
			n++
		}
	}
	return n
}
