package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifesprint/sensai/internal/harness"
)

func interventionFixture() harness.RemoteFixture {
	return harness.RemoteFixture{
		Interventions: []harness.InterventionFixture{
			{ID: "int-1", Type: "warning", Urgency: "high", Category: "capacity", Title: "Overcommitted"},
			{ID: "int-2", Type: "nudge", Urgency: "low", Category: "balance", Title: "Balance check"},
		},
	}
}

func TestCoachListShowsActive(t *testing.T) {
	opts := &RootOptions{Format: "text", Coach: testCoach(t, interventionFixture())}
	cmd := NewCoachCommand(opts)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"list"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Overcommitted")
	assert.Contains(t, out.String(), "Balance check")
}

func TestCoachAckOverrideBelowFloorFails(t *testing.T) {
	opts := &RootOptions{Format: "text", Coach: testCoach(t, interventionFixture())}
	cmd := NewCoachCommand(opts)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"ack", "int-2", "--action", "override", "--reason", "not now"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out.String(), "ACTION_NOT_ALLOWED")
}

func TestCoachAckOverrideHighUrgency(t *testing.T) {
	opts := &RootOptions{Format: "text", Coach: testCoach(t, interventionFixture())}
	cmd := NewCoachCommand(opts)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"ack", "int-1", "--action", "override", "--reason", "deadline is external"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Overcommitted")
}

func TestCoachDismissNudge(t *testing.T) {
	opts := &RootOptions{Format: "text", Coach: testCoach(t, interventionFixture())}
	cmd := NewCoachCommand(opts)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"dismiss", "int-2"})
	require.NoError(t, cmd.Execute())

	// The nudge is hidden locally; the warning is still active.
	assert.Contains(t, out.String(), "Overcommitted")
	assert.NotContains(t, out.String(), "Balance check")
}

func TestCoachDismissWarningFails(t *testing.T) {
	opts := &RootOptions{Format: "text", Coach: testCoach(t, interventionFixture())}
	cmd := NewCoachCommand(opts)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"dismiss", "int-1"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, out.String(), "ACTION_NOT_ALLOWED")
}
