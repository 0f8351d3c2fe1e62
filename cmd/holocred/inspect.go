// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/holomush/holocred/internal/credential"
	"github.com/holomush/holocred/internal/recordfile"
)

// RecordSummary describes a record without its secret material.
type RecordSummary struct {
	Identity     string `json:"identity"`
	Algorithm    string `json:"algorithm"`
	Iterations   int    `json:"iterations"`
	SaltSize     int    `json:"salt_size"`
	KeyLength    int    `json:"key_length"`
	NeedsUpgrade bool   `json:"needs_upgrade"`
}

// inspectConfig holds configuration for the inspect command.
type inspectConfig struct {
	record     string
	jsonOutput bool
}

// newInspectCmd creates the inspect subcommand.
func newInspectCmd(a *app) *cobra.Command {
	cfg := &inspectConfig{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the hashing parameters of a credential record",
		Long: `Show the identity and hashing parameters of a credential record, and
whether it should be re-hashed under the configured parameters.`,
		Args: cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, a, cfg)
		}),
	}

	cmd.Flags().StringVarP(&cfg.record, "record", "r", "", "credential record file")
	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output summary as JSON")
	_ = cmd.MarkFlagRequired("record")

	return cmd
}

func runInspect(cmd *cobra.Command, a *app, cfg *inspectConfig) error {
	rec, err := recordfile.ReadFile(cfg.record)
	if err != nil {
		return err
	}

	summary := summarize(rec, a.hasher)

	var output string
	if cfg.jsonOutput {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		output = string(data)
	} else {
		output = formatSummaryTable(summary)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
	return err
}

func summarize(rec *credential.Record, h *credential.Hasher) RecordSummary {
	p := rec.Params()
	return RecordSummary{
		Identity:     rec.Identity,
		Algorithm:    p.Algorithm.String(),
		Iterations:   p.Iterations,
		SaltSize:     p.SaltSize,
		KeyLength:    p.KeyLength,
		NeedsUpgrade: h.NeedsUpgrade(rec),
	}
}

func formatSummaryTable(s RecordSummary) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "IDENTITY\t%s\n", s.Identity)
	_, _ = fmt.Fprintf(w, "ALGORITHM\t%s\n", s.Algorithm)
	_, _ = fmt.Fprintf(w, "ITERATIONS\t%d\n", s.Iterations)
	_, _ = fmt.Fprintf(w, "SALT SIZE\t%d\n", s.SaltSize)
	_, _ = fmt.Fprintf(w, "KEY LENGTH\t%d\n", s.KeyLength)
	_, _ = fmt.Fprintf(w, "NEEDS UPGRADE\t%t\n", s.NeedsUpgrade)

	_ = w.Flush()
	return strings.TrimRight(sb.String(), "\n")
}
