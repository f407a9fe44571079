package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifesprint/sensai/internal/entity"
)

func TestDefault_Valid(t *testing.T) {
	s := Default()

	assert.Equal(t, entity.ToneEncouraging, s.CoachTone)
	assert.Equal(t, 14, s.SprintLengthDays)
	assert.Equal(t, 8, s.DimensionPriorities["health"])
	assert.Empty(t, Validate(s))
}

func TestLoad_CreatesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".sensai", "settings.yaml")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)

	// File was written for next time
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoad_RoundTripsSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	s := Default()
	s.CoachTone = entity.ToneDirect
	s.SprintLengthDays = 7
	require.NoError(t, Save(path, s))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("coach_tone: [broken"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsSchemaViolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	s := Default()
	s.SprintLengthDays = 90 // above the 28-day ceiling
	encoded := "coach_tone: encouraging\ninterventions_enabled: true\ndaily_standup_time: \"08:30\"\nsprint_length_days: 90\nmax_daily_capacity: 5\novercommit_threshold: 1.2\novercommit_buffer: 2\ndimension_alert_threshold: 5\ndimension_priorities:\n  health: 8\n"
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sprint_length_days")
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entity.Settings)
		field  string
	}{
		{"bad tone", func(s *entity.Settings) { s.CoachTone = "sarcastic" }, "coach_tone"},
		{"bad standup time", func(s *entity.Settings) { s.DailyStandupTime = "25:99" }, "daily_standup_time"},
		{"sprint too short", func(s *entity.Settings) { s.SprintLengthDays = 3 }, "sprint_length_days"},
		{"zero capacity", func(s *entity.Settings) { s.MaxDailyCapacity = 0 }, "max_daily_capacity"},
		{"priority out of range", func(s *entity.Settings) { s.DimensionPriorities = map[string]int{"health": 11} }, "health"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)

			verrs := Validate(s)
			require.NotEmpty(t, verrs)

			found := false
			for _, v := range verrs {
				if v.Field != "" && (v.Field == tt.field || filepath.Base(v.Field) == tt.field ||
					containsField(v.Field, tt.field)) {
					found = true
				}
			}
			assert.True(t, found, "expected a violation mentioning %s, got %v", tt.field, verrs)
		})
	}
}

// containsField matches nested CUE paths like dimension_priorities.health.
func containsField(path, field string) bool {
	for i := 0; i+len(field) <= len(path); i++ {
		if path[i:i+len(field)] == field {
			return true
		}
	}
	return false
}

func TestSave_RefusesInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	s := Default()
	s.OvercommitThreshold = 9.5

	err := Save(path, s)
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "invalid settings must not be written")
}
