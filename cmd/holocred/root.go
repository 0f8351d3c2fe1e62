// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/holomush/holocred/internal/config"
	"github.com/holomush/holocred/internal/credential"
	"github.com/holomush/holocred/internal/logging"
	"github.com/holomush/holocred/internal/observability"
	"github.com/holomush/holocred/internal/xdg"
)

const serviceName = "holocred"

// app holds the state shared by all subcommands. It is populated by setup
// once flags are parsed.
type app struct {
	configFile string
	metricsOut string

	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	hasher   *credential.Hasher
}

func newApp() *app {
	return &app{logger: slog.Default()}
}

// NewRootCmd creates the root command for the holocred CLI.
func NewRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holocred",
		Short: "holocred - HoloMUSH account credential tool",
		Long: `holocred creates and checks HoloMUSH account credential records.

Passwords are salted and hashed with PBKDF2-HMAC. Records are stored as
versioned JSON or YAML documents. Passwords are read from the terminal
without echo, or as a single line from standard input.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/holocred/config.yaml if present)")
	cmd.PersistentFlags().StringVar(&a.metricsOut, "metrics-out", "", "write Prometheus metrics to this textfile on exit")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newHashCmd(a))
	cmd.AddCommand(newVerifyCmd(a))
	cmd.AddCommand(newInspectCmd(a))
	cmd.AddCommand(newSchemaCmd(a))
	cmd.AddCommand(newBenchCmd(a))

	return cmd
}

// setup loads configuration and builds the logger, metrics and hasher.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.configFile
	if path == "" {
		var err error
		if path, err = xdg.ExistingConfigFile(); err != nil {
			return err
		}
	}

	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := logging.SetDefault(logging.Options{
		Service: serviceName,
		Version: version,
		Format:  cfg.Log.Format,
		Level:   cfg.Log.Level,
	}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	params, err := cfg.Hashing.Params()
	if err != nil {
		return err
	}

	registry, metrics := observability.NewRegistry()
	hasher, err := credential.NewHasher(params, credential.WithObserver(metrics))
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.registry = registry
	a.hasher = hasher

	logger.Debug("configuration loaded",
		"config", path,
		"algorithm", params.Algorithm.String(),
		"iterations", params.Iterations,
		"salt_size", params.SaltSize,
		"key_length", params.KeyLength,
	)
	return nil
}

// runE wraps a subcommand body so metrics are written whether or not it
// succeeds.
func (a *app) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if werr := a.writeMetrics(); werr != nil && err == nil {
			err = werr
		}
		return err
	}
}

func (a *app) writeMetrics() error {
	if a.metricsOut == "" || a.registry == nil {
		return nil
	}
	if err := observability.WriteTextfile(a.registry, a.metricsOut); err != nil {
		return err
	}
	a.logger.Debug("metrics written", "path", a.metricsOut)
	return nil
}
