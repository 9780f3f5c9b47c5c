package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"peopledesk/internal/app"
	"peopledesk/internal/config"
	"peopledesk/internal/core/apperror"
	"peopledesk/pkg/logger"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type rootOptions struct {
	envFiles []string
	logLevel string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "peoplectl",
		Short:         "Query, seed and browse the peopledesk list screens",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", config.DefaultEnvFiles, "Env files loaded before reading the environment")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newScreensCmd(&opts))
	cmd.AddCommand(newQueryCmd(&opts))
	cmd.AddCommand(newSeedCmd(&opts))
	cmd.AddCommand(newBrowseCmd(&opts))
	return cmd
}

// Execute runs the root command and exits with a status derived from the
// error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case apperror.HasCode(err, apperror.CodeValidation),
		apperror.HasCode(err, apperror.CodeInvalidFilter),
		apperror.HasCode(err, apperror.CodeInvalidExpression),
		apperror.HasCode(err, apperror.CodeNotFound):
		return exitUsage
	}
	return exitError
}

// openApp loads configuration and wires the listing service.
func openApp(ctx context.Context, opts *rootOptions) (*app.App, error) {
	cfg, err := config.Load(opts.envFiles...)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Config{
		Level:       opts.logLevel,
		Development: true,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, log)
}
