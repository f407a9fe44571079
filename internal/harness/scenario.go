package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is one scripted coaching session: a staged backend, a frozen
// clock, and a sequence of operations to run against the real session.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description"`

	// Clock is the frozen start time, RFC3339. Defaults to scenarioEpoch.
	Clock string `yaml:"clock,omitempty"`

	// IDs are the identifiers handed out for synthesized messages, in
	// order. The scenario fails if it runs out.
	IDs []string `yaml:"ids"`

	// Remote stages the scripted backend.
	Remote RemoteFixture `yaml:"remote"`

	// Steps is the operation sequence.
	Steps []Step `yaml:"steps"`
}

// scenarioEpoch is the default frozen clock for scenarios that don't pin one.
const scenarioEpoch = "2026-08-31T09:30:00Z"

// StartTime returns the scenario's frozen clock.
func (s *Scenario) StartTime() (time.Time, error) {
	clock := s.Clock
	if clock == "" {
		clock = scenarioEpoch
	}
	t, err := time.Parse(time.RFC3339, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("scenario %s: bad clock: %w", s.Name, err)
	}
	return t.UTC(), nil
}

// RemoteFixture stages the scripted backend's canonical state.
type RemoteFixture struct {
	Standup       *StandupFixture       `yaml:"standup,omitempty"`
	Interventions []InterventionFixture `yaml:"interventions,omitempty"`
	Velocity      *VelocityFixture      `yaml:"velocity,omitempty"`
	Wheel         *WheelFixture         `yaml:"wheel,omitempty"`
	Messages      []MessageFixture      `yaml:"messages,omitempty"`

	// Fail lists operations that return a remote failure.
	Fail []string `yaml:"fail,omitempty"`
}

// StandupFixture stages today's standup.
type StandupFixture struct {
	ID       string           `yaml:"id"`
	Date     string           `yaml:"date"`
	Status   string           `yaml:"status"`
	Blockers []BlockerFixture `yaml:"blockers,omitempty"`
}

// BlockerFixture stages one standup blocker.
type BlockerFixture struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Converted   bool   `yaml:"converted,omitempty"`
}

// InterventionFixture stages one intervention.
type InterventionFixture struct {
	ID       string `yaml:"id"`
	Type     string `yaml:"type"`
	Urgency  string `yaml:"urgency"`
	Category string `yaml:"category"`
	Title    string `yaml:"title"`
	Message  string `yaml:"message,omitempty"`
}

// VelocityFixture stages velocity metrics.
type VelocityFixture struct {
	Current float64 `yaml:"current"`
	Average float64 `yaml:"average"`
	History []struct {
		Sprint int `yaml:"sprint"`
		Points int `yaml:"points"`
	} `yaml:"history,omitempty"`
}

// WheelFixture stages the life wheel.
type WheelFixture struct {
	Balance    int `yaml:"balance"`
	Dimensions []struct {
		Name      string  `yaml:"name"`
		Percent   float64 `yaml:"percent"`
		Neglected bool    `yaml:"neglected,omitempty"`
	} `yaml:"dimensions,omitempty"`
}

// MessageFixture stages one server-side coach message.
type MessageFixture struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
	At    string `yaml:"at"` // RFC3339
	Read  bool   `yaml:"read,omitempty"`
}

// Step is one operation in the scenario flow. Op selects the operation; the
// remaining fields are its arguments.
type Step struct {
	Op string `yaml:"op"`

	Ceremony  string   `yaml:"ceremony,omitempty"`
	Tasks     []string `yaml:"tasks,omitempty"`
	Blocker   string   `yaml:"blocker,omitempty"`
	Target    string   `yaml:"target,omitempty"` // intervention ID
	Action    string   `yaml:"action,omitempty"` // acknowledge | override | defer
	Reason    string   `yaml:"reason,omitempty"`
	Mood      string   `yaml:"mood,omitempty"`
	Dimension string   `yaml:"dimension,omitempty"`
	Title     string   `yaml:"title,omitempty"`
	Points    int      `yaml:"points,omitempty"`
}

// LoadScenario parses one scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: missing name", path)
	}
	return &s, nil
}

// LoadScenarioDir loads every *.yaml scenario under dir, sorted by name.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}
