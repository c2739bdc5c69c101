// Package cli is the tlogg command dispatcher: it parses arguments with
// cobra into typed commands, runs them against one storage session and
// maps their errors to exit codes.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/dori/tlogg/internal/app"
	"github.com/dori/tlogg/internal/config"
	"github.com/dori/tlogg/internal/db"
	"github.com/dori/tlogg/internal/logging"
)

// Version is the release version, set with -ldflags at build time
var Version = "0.1.0"

// Streams are the process streams commands read from and write to
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Command is one parsed invocation. Every command type implements run,
// so the set of commands and their handlers cannot drift apart.
type Command interface {
	run(s *session) error
}

// standalone commands run without configuration or a dataset
type standalone interface {
	standalone()
}

// session is the per-invocation context handed to a command
type session struct {
	ctx     context.Context
	streams Streams
	cfg     *config.Config
	logger  *slog.Logger
	now     func() time.Time

	app *app.App
}

// repo opens the dataset on first use
func (s *session) repo() (*db.Repository, error) {
	if s.app == nil {
		a, err := app.New(s.ctx, s.cfg, app.Options{Logger: s.logger, Now: s.now})
		if err != nil {
			return nil, err
		}
		s.app = a
	}
	return s.app.Repo, nil
}

func (s *session) close() error {
	if s.app == nil {
		return nil
	}
	err := s.app.Close()
	s.app = nil
	return err
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.streams.Out, format, args...)
}

// dispatcher holds what every command needs besides its own flags
type dispatcher struct {
	streams    Streams
	now        func() time.Time
	verbose    bool
	configFile string
}

// dispatch loads the configuration, runs c and closes the session on
// every path
func (d *dispatcher) dispatch(cmd *cobra.Command, c Command) (err error) {
	if _, ok := c.(standalone); ok {
		s := &session{
			ctx:     cmd.Context(),
			streams: d.streams,
			logger:  logging.Discard(),
			now:     d.now,
		}
		if rerr := c.run(s); rerr != nil {
			return &commandError{err: rerr}
		}
		return nil
	}

	cfg, err := config.Load(config.Options{
		ConfigFile: d.configFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return newUsageError(err)
	}

	logger := logging.New(d.streams.Err, logging.Level(d.verbose, cfg.LogLevel))
	logger.Debug("configuration loaded", "config_file", cfg.ConfigFile, "data_dir", cfg.DataDir)

	s := &session{
		ctx:     cmd.Context(),
		streams: d.streams,
		cfg:     cfg,
		logger:  logger,
		now:     d.now,
	}

	defer func() {
		if cerr := s.close(); cerr != nil {
			err = multierr.Append(err, &commandError{err: cerr})
		}
	}()

	if rerr := c.run(s); rerr != nil {
		logger.Debug("command failed", "command", cmd.Name(), "error", rerr)
		return &commandError{err: rerr}
	}
	return nil
}

// newRootCmd builds the command tree around d
func newRootCmd(d *dispatcher) *cobra.Command {
	root := &cobra.Command{
		Use:   "tlogg",
		Short: "Log the hours you spend on projects",
		Long: `tlogg records hours spent on named projects and exports them as
markdown or CSV reports.

` + exitCodeHelp,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return newUsageError(errors.New("a command is required"))
		},
	}

	root.SetIn(d.streams.In)
	root.SetOut(d.streams.Out)
	root.SetErr(d.streams.Err)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return newUsageError(err)
	})

	pf := root.PersistentFlags()
	pf.BoolVarP(&d.verbose, "verbose", "v", false, "print diagnostic output to stderr")
	pf.String("data-dir", "", "directory holding the dataset (default $XDG_DATA_HOME/tlogg)")
	pf.StringVar(&d.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/tlogg/config.yaml)")

	root.AddCommand(
		newAddCmd(d),
		newRmCmd(d),
		newAddProjectCmd(d),
		newRmProjectCmd(d),
		newPrintCmd(d),
		newLsCmd(d),
		newProjectsCmd(d),
		newBrowseCmd(d),
		newInfoCmd(d),
		newVersionCmd(d),
	)

	return root
}

// Execute runs one invocation and returns its exit code
func Execute(ctx context.Context, args []string, streams Streams) int {
	return execute(ctx, args, streams, time.Now)
}

func execute(ctx context.Context, args []string, streams Streams, now func() time.Time) int {
	d := &dispatcher{streams: streams, now: now}
	root := newRootCmd(d)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	// errors not raised by a command come from argument parsing
	var cerr *commandError
	if !errors.As(err, &cerr) {
		err = newUsageError(err)
	}

	fmt.Fprintf(streams.Err, "tlogg: %v\n", err)
	code := ExitCode(err)
	if code == ExitUsage {
		fmt.Fprintln(streams.Err, "Run 'tlogg --help' for usage.")
	}
	return code
}
