// Package harness runs scripted coaching scenarios against the real session
// stack. A scenario stages a deterministic backend, pins the clock and ID
// generator, and walks a sequence of operations; the resulting trace is
// compared against a golden file.
//
// Unlike an in-test fake assembled ad hoc, the harness exercises the full
// wiring: cache, engines, feed, and session, with only the network edge
// scripted.
package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/lifesprint/sensai/internal/cache"
	"github.com/lifesprint/sensai/internal/engine"
	"github.com/lifesprint/sensai/internal/entity"
	"github.com/lifesprint/sensai/internal/feed"
	"github.com/lifesprint/sensai/internal/ident"
	"github.com/lifesprint/sensai/internal/remote"
	"github.com/lifesprint/sensai/internal/session"
	"github.com/lifesprint/sensai/internal/testutil"
)

// TraceEvent is one step's outcome. Status is "ok" for success, "rejected"
// for a pre-network transition rejection, and "failed" for a remote failure
// (which always implies a rollback). Unread is the feed's unread count after
// the step - the derived counter the scenarios watch for drift.
type TraceEvent struct {
	Step   int    `json:"step"`
	Op     string `json:"op"`
	Status string `json:"status"`
	Detail string `json:"detail"`
	Unread int    `json:"unread"`
}

// Result is a completed scenario run.
type Result struct {
	Scenario string       `json:"scenario"`
	Trace    []TraceEvent `json:"trace"`
}

// Event returns the i-th trace event.
func (r *Result) Event(i int) TraceEvent {
	return r.Trace[i]
}

// Run executes one scenario against a fresh session and returns its trace.
func Run(scenario *Scenario) (*Result, error) {
	start, err := scenario.StartTime()
	if err != nil {
		return nil, err
	}
	clock := testutil.NewClock(start)

	coach, err := NewScriptedCoach(scenario.Remote, clock.Now)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: stage remote: %w", scenario.Name, err)
	}

	s := session.New(coach,
		session.WithClock(clock.Now),
		session.WithIDs(ident.NewFixedGenerator(scenario.IDs...)),
		session.WithPicker(feed.FirstPicker{}),
	)

	ctx := context.Background()
	result := &Result{Scenario: scenario.Name, Trace: []TraceEvent{}}

	for i, step := range scenario.Steps {
		detail, err := runStep(ctx, s, step)
		event := TraceEvent{
			Step:   i + 1,
			Op:     step.Op,
			Status: classify(err),
			Detail: detail,
			Unread: s.Feed.UnreadCount(),
		}
		if err != nil {
			event.Detail = errorDetail(err)
		}
		result.Trace = append(result.Trace, event)
	}

	return result, nil
}

// classify maps a step error onto the trace status vocabulary.
func classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case engine.IsInvalidTransition(err) || cache.IsConcurrentMutation(err):
		return "rejected"
	case remote.IsRemoteFailure(err):
		return "failed"
	default:
		return "failed"
	}
}

// errorDetail renders a stable one-line detail for a failed or rejected
// step.
func errorDetail(err error) string {
	var transition *engine.InvalidTransitionError
	if errors.As(err, &transition) {
		return string(transition.Code)
	}
	var remoteErr *remote.RemoteFailure
	if errors.As(err, &remoteErr) {
		return "remote:" + remoteErr.Operation
	}
	if cache.IsConcurrentMutation(err) {
		return "CONCURRENT_MUTATION"
	}
	return err.Error()
}

// runStep dispatches one scenario operation.
func runStep(ctx context.Context, s *session.Session, step Step) (string, error) {
	switch step.Op {
	case "refresh":
		if err := s.Refresh(ctx); err != nil {
			return "", err
		}
		return "refreshed", nil

	case "open":
		if _, err := s.Open(ctx); err != nil {
			return "", err
		}
		return "greeting synthesized", nil

	case "standup_show":
		standup, err := s.Ceremonies.Today(ctx)
		if err != nil {
			return "", err
		}
		return "standup " + string(standup.Status), nil

	case "standup_complete":
		standup, err := s.Ceremonies.CompleteStandup(ctx, remote.CompleteStandupRequest{Mood: step.Mood})
		if err != nil {
			return "", err
		}
		return "standup " + string(standup.Status), nil

	case "standup_skip":
		standup, err := s.Ceremonies.SkipStandup(ctx, step.Reason)
		if err != nil {
			return "", err
		}
		return "standup " + string(standup.Status), nil

	case "convert_blocker":
		if _, err := s.Ceremonies.ConvertBlocker(ctx, step.Blocker); err != nil {
			return "", err
		}
		return "blocker " + step.Blocker + " converted", nil

	case "ceremony_start":
		record, err := s.Ceremonies.Start(ctx, entity.CeremonyType(step.Ceremony))
		if err != nil {
			return "", err
		}
		return step.Ceremony + " " + string(record.Status), nil

	case "ceremony_complete":
		record, err := completeCeremony(ctx, s, step)
		if err != nil {
			return "", err
		}
		return step.Ceremony + " " + string(record.Status), nil

	case "ack":
		ack, err := s.Interventions.Acknowledge(ctx, step.Target, entity.AckAction(step.Action), step.Reason)
		if err != nil {
			return "", err
		}
		if ack.Overridden {
			return step.Target + " overridden", nil
		}
		return step.Target + " acknowledged", nil

	case "dismiss":
		if err := s.Interventions.Dismiss(step.Target); err != nil {
			return "", err
		}
		return step.Target + " hidden", nil

	case "recovery":
		if _, err := s.AddRecoveryTask(ctx, entity.RecoveryTask{
			Title:     step.Title,
			Points:    step.Points,
			Dimension: step.Dimension,
		}); err != nil {
			return "", err
		}
		return "recovery scheduled for " + step.Dimension, nil

	default:
		return "", fmt.Errorf("unknown op %q", step.Op)
	}
}

func completeCeremony(ctx context.Context, s *session.Session, step Step) (entity.SprintCeremony, error) {
	switch entity.CeremonyType(step.Ceremony) {
	case entity.CeremonyPlanning:
		return s.Ceremonies.CompletePlanning(ctx, remote.PlanningRequest{SelectedTaskIDs: step.Tasks})
	case entity.CeremonyReview:
		return s.Ceremonies.CompleteReview(ctx, remote.ReviewRequest{})
	case entity.CeremonyRetrospective:
		return s.Ceremonies.CompleteRetrospective(ctx, remote.RetrospectiveRequest{})
	default:
		return entity.SprintCeremony{}, fmt.Errorf("unknown ceremony %q", step.Ceremony)
	}
}
