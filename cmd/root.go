// Package cmd implements the CLI commands for canvaspipe using Cobra.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/canvaspipe/config"
	"github.com/gaurav-prasanna/canvaspipe/core/canvas"
)

// Status marks; color turns itself off when stdout is not a terminal.
var (
	okMark   = color.GreenString("✓")
	failMark = color.RedString("✗")
)

var (
	cfg    config.Config
	logger *slog.Logger

	flagEnvFiles []string
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "canvaspipe",
	Short: "canvaspipe: sync Canvas course pages into the course website",
	Long: `canvaspipe reads course pages from Canvas LMS and turns them into website
content: Markdown pages with front matter, office-hours schedules, and
per-page Markdown, JSON or PDF exports.

Configuration comes from the environment, .env.local and .env.

Usage:
  canvaspipe sync [--dry-run]
  canvaspipe officehours <course-id> --format ics`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadFiles(flagEnvFiles...)
		if err != nil {
			return err
		}
		if flagVerbose {
			cfg.LogLevel = "debug"
		}
		logger = cfg.NewLogger(os.Stderr)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&flagEnvFiles, "env-file", config.DefaultEnvFiles, "Env files to read when present")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log at debug level")
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// canvasClient builds a Canvas client from the loaded configuration.
func canvasClient() (*canvas.Client, error) {
	if err := cfg.RequireCanvas(); err != nil {
		return nil, err
	}
	return canvas.New(cfg.BaseURL, cfg.Token,
		canvas.WithTimeout(cfg.Timeout),
		canvas.WithLogger(logger),
	), nil
}
