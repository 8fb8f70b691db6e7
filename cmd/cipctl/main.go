// Package main provides the cipctl binary entry point.
// cipctl keeps the lifecycle status of Core Improvement Proposals in step
// with their age and resolves contributor identities.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/core-coin/cipctl/config"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "cipctl"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	root       string
	strategy   string
	logLevel   string
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}
	update := &updateFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Keep proposal lifecycle status in step with proposal age",
		Long: `cipctl classifies every proposal in the collection by the age of its
date header and rewrites the status it records:

  younger than 14 days   draft
  14 to 28 days          last call
  28 to 42 days          accepted
  42 days and older      final

Running without a subcommand is the same as "cipctl update".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, g, update)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&g.root, "root", "", "Collection root (default: project config or git root)")
	pf.StringVar(&g.strategy, "strategy", "", "Status strategy (tags, status)")
	pf.StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	update.register(cmd)

	cmd.AddCommand(
		newUpdateCmd(g),
		newWatchCmd(g),
		newResolveCmd(g),
		newAuthorsCmd(g),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

func newLogger(w io.Writer, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// setup builds the logger and the layered config with flag overrides applied.
func setup(cmd *cobra.Command, g *globalFlags) (*config.Config, *slog.Logger, error) {
	logger := newLogger(cmd.ErrOrStderr(), g.logLevel)
	slog.SetDefault(logger)

	cfg, err := config.NewLoader(logger, "").Load(g.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if g.root != "" {
		root, err := filepath.Abs(g.root)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve root: %w", err)
		}
		cfg.Collection.Root = root
	}
	if g.strategy != "" {
		cfg.Lifecycle.Strategy = g.strategy
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger.Debug("Configuration loaded",
		"root", cfg.Collection.Root,
		"patterns", cfg.Collection.Patterns,
		"strategy", cfg.Lifecycle.Strategy)
	return cfg, logger, nil
}
