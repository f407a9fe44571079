// Package config loads, validates, and persists the coach settings file.
//
// Settings live in a single YAML document validated against an embedded CUE
// schema before use, so a bad edit fails with a field-level message instead
// of surfacing later as a confusing coaching decision. The loaded record is
// a one-time seed for the session - there is no live subscription.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lifesprint/sensai/internal/entity"
)

// DefaultPath is the settings location relative to the user home directory.
const DefaultPath = ".sensai/settings.yaml"

const defaultSettingsYAML = `# sensai coach settings
coach_tone: encouraging
interventions_enabled: true
daily_standup_time: "08:30"
sprint_length_days: 14
max_daily_capacity: 5
overcommit_threshold: 1.2
overcommit_buffer: 2
dimension_alert_threshold: 5
dimension_priorities:
  health: 8
  career: 7
  family: 8
  finance: 6
  growth: 5
  leisure: 4
`

// Default returns the out-of-the-box settings.
func Default() entity.Settings {
	var s entity.Settings
	// The embedded default document is the single source for defaults;
	// a decode failure here is a build-time mistake.
	if err := yaml.Unmarshal([]byte(defaultSettingsYAML), &s); err != nil {
		panic(fmt.Sprintf("config: default settings document invalid: %v", err))
	}
	return s
}

// Load reads and validates the settings file. A missing file is created
// with defaults first, so first run works without setup.
func Load(path string) (entity.Settings, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if writeErr := writeDefault(path); writeErr != nil {
			return entity.Settings{}, writeErr
		}
		raw = []byte(defaultSettingsYAML)
	} else if err != nil {
		return entity.Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var s entity.Settings
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return entity.Settings{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if verrs := Validate(s); len(verrs) > 0 {
		return entity.Settings{}, fmt.Errorf("config: %s invalid: %w", path, Join(verrs))
	}
	return s, nil
}

// Save validates and writes settings back to disk.
func Save(path string, s entity.Settings) error {
	if verrs := Validate(s); len(verrs) > 0 {
		return fmt.Errorf("config: refusing to save invalid settings: %w", Join(verrs))
	}

	encoded, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("config: encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: ensure settings dir: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// writeDefault creates the settings file with the default document.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: ensure settings dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultSettingsYAML), 0o644); err != nil {
		return fmt.Errorf("config: write default %s: %w", path, err)
	}
	return nil
}
