// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/holocred/internal/recordfile"
)

// verifyConfig holds configuration for the verify command.
type verifyConfig struct {
	record  string
	upgrade bool
}

// newVerifyCmd creates the verify subcommand.
func newVerifyCmd(a *app) *cobra.Command {
	cfg := &verifyConfig{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a password against a credential record",
		Long: `Check a password against a credential record. Prints "match" and exits zero
when the password is correct; exits non-zero otherwise.

With --upgrade, a record hashed under weaker parameters than the configured
ones is re-hashed with the verified password and written back.`,
		Args: cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, a, cfg)
		}),
	}

	cmd.Flags().StringVarP(&cfg.record, "record", "r", "", "credential record file")
	cmd.Flags().BoolVar(&cfg.upgrade, "upgrade", false, "re-hash the record when it uses outdated parameters")
	_ = cmd.MarkFlagRequired("record")

	return cmd
}

func runVerify(cmd *cobra.Command, a *app, cfg *verifyConfig) error {
	ctx := cmd.Context()

	rec, err := recordfile.ReadFile(cfg.record)
	if err != nil {
		return err
	}

	challenge, err := readSecret(cmd, "Password: ")
	if err != nil {
		return err
	}

	ok, err := rec.VerifyPasswordContext(ctx, a.hasher, challenge)
	if err != nil {
		return err
	}
	if !ok {
		return oops.Code("CLI_PASSWORD_MISMATCH").
			With("identity", rec.Identity).
			Errorf("password does not match")
	}

	if _, err := fmt.Fprintln(cmd.OutOrStdout(), "match"); err != nil {
		return err
	}

	if !a.hasher.NeedsUpgrade(rec) {
		return nil
	}

	if !cfg.upgrade {
		a.logger.WarnContext(ctx, "record uses outdated hashing parameters",
			"identity", rec.Identity,
			"record", cfg.record,
			"algorithm", rec.Algorithm.String(),
			"iterations", rec.Iterations,
		)
		return nil
	}

	if err := rec.ChangePasswordContext(ctx, a.hasher, challenge); err != nil {
		return err
	}
	if err := recordfile.WriteFile(cfg.record, rec); err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "record upgraded",
		"identity", rec.Identity,
		"record", cfg.record,
		"algorithm", rec.Algorithm.String(),
		"iterations", rec.Iterations,
	)
	return nil
}
