// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/holomush/holocred/internal/credential"
	"github.com/holomush/holocred/internal/recordfile"
)

// hashConfig holds configuration for the hash command.
type hashConfig struct {
	identity string
	out      string
	format   string
}

// newHashCmd creates the hash subcommand.
func newHashCmd(a *app) *cobra.Command {
	cfg := &hashConfig{}

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Create a credential record from a new password",
		Long: `Create a credential record for an identity. The password is read from the
terminal (twice, for confirmation) or as one line from standard input, and
hashed with the configured parameters.`,
		Args: cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, _ []string) error {
			return runHash(cmd, a, cfg)
		}),
	}

	cmd.Flags().StringVar(&cfg.identity, "identity", "", "account identity (email)")
	cmd.Flags().StringVarP(&cfg.out, "out", "o", "", "write the record to this file (.json, .yaml or .yml)")
	cmd.Flags().StringVar(&cfg.format, "format", "json", "output format when printing (json or yaml)")
	_ = cmd.MarkFlagRequired("identity")

	return cmd
}

func runHash(cmd *cobra.Command, a *app, cfg *hashConfig) error {
	format, err := recordfile.ParseFormat(cfg.format)
	if err != nil {
		return err
	}

	rec, err := credential.NewRecord(cfg.identity)
	if err != nil {
		return err
	}

	password, err := readNewPassword(cmd)
	if err != nil {
		return err
	}

	if err := rec.ChangePasswordContext(cmd.Context(), a.hasher, password); err != nil {
		return err
	}

	a.logger.InfoContext(cmd.Context(), "credential record created",
		"identity", rec.Identity,
		"algorithm", rec.Algorithm.String(),
		"iterations", rec.Iterations,
		"salt_size", rec.SaltSize,
	)

	if cfg.out != "" {
		return recordfile.WriteFile(cfg.out, rec)
	}

	data, err := recordfile.Marshal(rec, format)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
