package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lifesprint/sensai/internal/config"
	"github.com/lifesprint/sensai/internal/entity"
	"github.com/lifesprint/sensai/internal/remote"
)

// NewSettingsCommand creates the settings command group. Settings live in a
// local YAML file validated against the CUE schema; "push" and "pull" sync
// them with the backend.
func NewSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Coaching preferences",
	}

	show := &cobra.Command{
		Use:           "show",
		Short:         "Show local settings",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsShow(rootOpts, cmd)
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one setting locally and push it to the backend",
		Long: `Set a coaching preference. The value is validated against the settings
schema before anything is written or sent.

Example:
  sensai settings set coach_tone tough_love
  sensai settings set sprint_length_days 7`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsSet(rootOpts, cmd, args[0], args[1])
		},
	}

	pull := &cobra.Command{
		Use:           "pull",
		Short:         "Replace local settings with the backend's",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsPull(rootOpts, cmd)
		},
	}

	cmd.AddCommand(show, set, pull)
	return cmd
}

func settingsPath(opts *RootOptions) string {
	if opts.SettingsPath != "" {
		return opts.SettingsPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return config.DefaultPath
	}
	return filepath.Join(home, config.DefaultPath)
}

func runSettingsShow(opts *RootOptions, cmd *cobra.Command) error {
	out := formatter(opts, cmd)
	prefs, err := config.Load(settingsPath(opts))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load settings", err)
	}
	return out.Emit(prefs, func(w io.Writer) { renderSettings(w, prefs) })
}

func runSettingsSet(opts *RootOptions, cmd *cobra.Command, key, value string) error {
	out := formatter(opts, cmd)
	path := settingsPath(opts)

	prefs, err := config.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load settings", err)
	}

	patch, err := buildPatch(&prefs, key, value)
	if err != nil {
		return WrapExitError(ExitCommandError, err.Error(), err)
	}

	// Save validates against the schema; an out-of-range value never
	// reaches the backend.
	if err := config.Save(path, prefs); err != nil {
		return out.Fail("invalid_settings", err.Error(), err)
	}

	s, cleanup, err := buildSession(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	canonical, err := s.UpdateSettings(cmd.Context(), patch)
	if err != nil {
		return out.Fail("remote_failure", "settings saved locally but not pushed", err)
	}
	return out.Emit(canonical, func(w io.Writer) { renderSettings(w, canonical) })
}

func runSettingsPull(opts *RootOptions, cmd *cobra.Command) error {
	out := formatter(opts, cmd)

	s, cleanup, err := buildSession(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := s.Refresh(cmd.Context()); err != nil {
		return out.Fail("remote_failure", "could not fetch settings", err)
	}
	prefs, ok := s.Settings()
	if !ok {
		return out.Fail("remote_failure", "backend returned no settings", nil)
	}
	if err := config.Save(settingsPath(opts), prefs); err != nil {
		return WrapExitError(ExitCommandError, "failed to write settings", err)
	}
	return out.Emit(prefs, func(w io.Writer) { renderSettings(w, prefs) })
}

// buildPatch applies one key=value change to prefs and returns the matching
// remote patch.
func buildPatch(prefs *entity.Settings, key, value string) (remote.SettingsPatch, error) {
	var patch remote.SettingsPatch
	switch key {
	case "coach_tone":
		tone := entity.Tone(value)
		prefs.CoachTone = tone
		patch.CoachTone = &tone
	case "interventions_enabled":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return patch, fmt.Errorf("parse %s: %w", key, err)
		}
		prefs.InterventionsEnabled = enabled
		patch.InterventionsEnabled = &enabled
	case "daily_standup_time":
		prefs.DailyStandupTime = value
		patch.DailyStandupTime = &value
	case "sprint_length_days":
		n, err := strconv.Atoi(value)
		if err != nil {
			return patch, fmt.Errorf("parse %s: %w", key, err)
		}
		prefs.SprintLengthDays = n
		patch.SprintLengthDays = &n
	case "max_daily_capacity":
		n, err := strconv.Atoi(value)
		if err != nil {
			return patch, fmt.Errorf("parse %s: %w", key, err)
		}
		prefs.MaxDailyCapacity = n
		patch.MaxDailyCapacity = &n
	case "overcommit_threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return patch, fmt.Errorf("parse %s: %w", key, err)
		}
		prefs.OvercommitThreshold = f
		patch.OvercommitThreshold = &f
	default:
		return patch, fmt.Errorf("unknown setting %q", key)
	}
	return patch, nil
}
