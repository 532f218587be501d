package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/mirrorpad/internal/config"
)

// ProfileResult holds config validation results.
type ProfileResult struct {
	Valid   bool   `json:"valid"`
	Profile string `json:"profile,omitempty"`
	Relay   string `json:"relay,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewProfileCommand creates the profile command group.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect deployment configuration",
	}
	cmd.AddCommand(newProfileValidateCommand(rootOpts))
	return cmd
}

func newProfileValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a config file against the schema",
		Long: `Validate checks a YAML config file against the embedded schema and
reports the resolved protocol profile, without connecting anywhere.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileValidate(rootOpts, args[0], cmd)
		},
	}
}

func runProfileValidate(rootOpts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	cfg, err := config.Load(path)
	if err != nil {
		if ferr := formatter.Error("INVALID_CONFIG", err.Error(), nil); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitFailure, "config invalid", err)
	}

	profile, err := cfg.Protocol()
	if err != nil {
		if ferr := formatter.Error("INVALID_PROFILE", err.Error(), nil); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitFailure, "profile invalid", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ProfileResult{
			Valid:   true,
			Profile: profile.Name,
			Relay:   cfg.Relay,
		})
	}
	formatter.VerboseLog("relay: %s", cfg.Relay)
	return formatter.Success("config valid, profile " + profile.Name)
}
