package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/mirrorpad/internal/archive"
	"github.com/roach88/mirrorpad/internal/config"
	"github.com/roach88/mirrorpad/internal/session"
	"github.com/roach88/mirrorpad/internal/transport"
)

// ConnectOptions holds flags for the connect command.
type ConnectOptions struct {
	ConfigPath string
	Relay      string
	NoArchive  bool
}

// NewConnectCommand creates the connect command.
func NewConnectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConnectOptions{}

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect to a relay and mirror the game until disconnect",
		Long: `Connect dials the relay, runs the session event loop, and keeps a
synchronized copy of every document until the connection drops, the
session hits a fatal protocol error, or the process is interrupted.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnect(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (YAML)")
	cmd.Flags().StringVar(&opts.Relay, "relay", "", "relay URL (overrides config)")
	cmd.Flags().BoolVar(&opts.NoArchive, "no-archive", false, "do not archive the game locally")

	return cmd
}

func runConnect(rootOpts *RootOptions, opts *ConnectOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	if opts.Relay != "" {
		cfg.Relay = opts.Relay
	}

	profile, err := cfg.Protocol()
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve profile", err)
	}
	policy, err := cfg.CursorPolicy()
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve cursor policy", err)
	}

	level := slog.LevelInfo
	if rootOpts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	channel, err := transport.Dial(ctx, cfg.Relay, logger)
	if err != nil {
		return WrapExitError(ExitFailure, "connect relay", err)
	}
	defer channel.Close()

	sessionOpts := []session.Option{
		session.WithCursorPolicy(policy),
		session.WithFadeWindow(cfg.FadeWindow()),
		session.WithFontSize(cfg.Editor.FontSize),
		session.WithLogger(logger),
	}
	if !opts.NoArchive {
		arch, err := archive.Open(cfg.ArchivePath)
		if err != nil {
			return WrapExitError(ExitFailure, "open archive", err)
		}
		defer arch.Close()
		sessionOpts = append(sessionOpts, session.WithArchiver(arch))
	}

	sess := session.New(profile, channel, sessionOpts...)
	formatter.VerboseLog("session %s connecting to %s (profile %s)",
		sess.Token(), cfg.Relay, profile.Name)

	readDone := make(chan error, 1)
	go func() {
		readDone <- channel.ReadLoop(ctx, sess.HandleFrame)
		sess.Stop()
	}()

	runErr := sess.Run(ctx)
	readErr := <-readDone

	if sess.Terminated() {
		return WrapExitError(ExitFailure, "session terminated by protocol error", nil)
	}
	if runErr != nil && runErr != context.Canceled {
		return WrapExitError(ExitFailure, "session loop", runErr)
	}
	if readErr != nil && readErr != context.Canceled {
		return WrapExitError(ExitFailure, "relay connection", readErr)
	}
	return formatter.Success("disconnected")
}

// loadConfig resolves the effective configuration: defaults when no file
// is given.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
