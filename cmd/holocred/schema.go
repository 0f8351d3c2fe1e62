// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/holocred/internal/recordfile"
)

// newSchemaCmd creates the schema subcommand.
func newSchemaCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for credential record documents",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, _ []string) error {
			schema, err := recordfile.GenerateSchema()
			if err != nil {
				return err
			}
			schema = append(schema, '\n')

			if out == "" {
				_, err = cmd.OutOrStdout().Write(schema)
				return err
			}
			if err := os.WriteFile(out, schema, 0o644); err != nil { //nolint:gosec // schema is public
				return oops.Code("CLI_WRITE_FAILED").With("path", out).Wrap(err)
			}
			a.logger.Info("schema written", "path", out)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the schema to this file")

	return cmd
}
