// Package cli implements the procbridge command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deixis/procbridge"
	"github.com/deixis/procbridge/internal/config"
	"github.com/deixis/procbridge/internal/control"
	"github.com/deixis/procbridge/internal/logging"
	"github.com/deixis/procbridge/internal/platform"
	"github.com/deixis/procbridge/internal/preset"
	"github.com/deixis/procbridge/internal/runner"
)

// errFailed marks a command whose operation ran but reported failure.
// Its details have already been printed.
var errFailed = errors.New("operation failed")

// NewRootCmd returns the procbridge command tree.
func NewRootCmd() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "procbridge",
		Short: "Run, detect, kill and launch native processes",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default <user config dir>/procbridge/config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "Print results as JSON")

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newDetectCmd(a))
	root.AddCommand(newKillCmd(a))
	root.AddCommand(newOpenCmd(a))
	root.AddCommand(newSynthCmd(a))
	root.AddCommand(newTemplatesCmd(a))
	root.AddCommand(newPresetCmd(a))
	root.AddCommand(newMCPCmd(a))
	root.AddCommand(newVersionCmd())

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root, a
}

// Execute runs the CLI entrypoint.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "procbridge:", err)
		}
		os.Exit(1)
	}
}

// app carries flags and the dependencies built from them.
type app struct {
	configPath string
	logLevel   string
	jsonOut    bool

	cfg    *config.Config
	logger *zap.Logger
	engine *control.Engine

	// Overrides for tests. Nil means a real runner and the host platform.
	runner  control.CommandRunner
	resolve func() platform.Kind
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return errors.Wrap(err, "loading config")
	}
	a.cfg = cfg

	level := cfg.Level()
	if a.logLevel != "" {
		level = a.logLevel
	}
	logger, err := logging.New(level, cfg.LogJSON)
	if err != nil {
		return err
	}
	a.logger = logger

	r := a.runner
	if r == nil {
		r = &runner.Runner{
			Timeout:   cfg.Timeout(),
			MaxOutput: cfg.MaxOutputBytes(),
			Logger:    logger,
		}
	}
	a.engine = control.New(r, logger)
	a.engine.Resolve = a.resolve
	return nil
}

func (a *app) presets() *preset.FileStore {
	return preset.NewFileStore(a.cfg.PresetsPath())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), procbridge.Version)
			return nil
		},
	}
}
