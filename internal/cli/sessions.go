package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mirrorpad/internal/archive"
)

// SessionsOptions holds flags for the sessions command.
type SessionsOptions struct {
	DBPath string
	Show   int64
}

// GameSummary is one archived game in list output.
type GameSummary struct {
	ID           int64  `json:"id"`
	SessionToken string `json:"session_token"`
	ArchivedAt   string `json:"archived_at"`
}

// SolutionDetail is one archived solution in show output.
type SolutionDetail struct {
	ProblemID  int64    `json:"problem_id"`
	Prompt     string   `json:"prompt"`
	Difficulty int      `json:"difficulty"`
	Lines      []string `json:"lines"`
}

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionsOptions{}

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List archived games, or show one game's solutions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "mirrorpad.db", "archive database path")
	cmd.Flags().Int64Var(&opts.Show, "show", 0, "show solutions for the given game id")

	return cmd
}

func runSessions(rootOpts *RootOptions, opts *SessionsOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	arch, err := archive.Open(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "open archive", err)
	}
	defer arch.Close()

	if opts.Show != 0 {
		return showGame(formatter, arch, opts.Show)
	}
	return listGames(formatter, arch)
}

func listGames(formatter *OutputFormatter, arch *archive.Archive) error {
	games, err := arch.ListGames()
	if err != nil {
		return WrapExitError(ExitFailure, "list games", err)
	}

	summaries := make([]GameSummary, 0, len(games))
	for _, g := range games {
		summaries = append(summaries, GameSummary{
			ID:           g.ID,
			SessionToken: g.SessionToken,
			ArchivedAt:   g.ArchivedAt.Format("2006-01-02 15:04:05"),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(summaries)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(formatter.Writer, "no archived games")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(formatter.Writer, "%4d  %s  %s\n", s.ID, s.ArchivedAt, s.SessionToken)
	}
	return nil
}

func showGame(formatter *OutputFormatter, arch *archive.Archive, gameID int64) error {
	solutions, err := arch.Solutions(gameID)
	if err != nil {
		return WrapExitError(ExitFailure, "load solutions", err)
	}
	if len(solutions) == 0 {
		return WrapExitError(ExitCommandError, fmt.Sprintf("no archived game with id %d", gameID), nil)
	}

	details := make([]SolutionDetail, 0, len(solutions))
	for _, sol := range solutions {
		details = append(details, SolutionDetail{
			ProblemID:  int64(sol.ProblemID),
			Prompt:     sol.Prompt,
			Difficulty: sol.Difficulty,
			Lines:      sol.Lines,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(details)
	}

	for _, d := range details {
		fmt.Fprintf(formatter.Writer, "problem %d (difficulty %d): %s\n",
			d.ProblemID, d.Difficulty, d.Prompt)
		fmt.Fprintln(formatter.Writer, strings.Join(d.Lines, "\n"))
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}
