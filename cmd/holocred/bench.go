// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/holomush/holocred/internal/credential"
)

// benchConfig holds configuration for the bench command.
type benchConfig struct {
	workers int
	count   int
}

// BenchResult summarizes a benchmark run.
type BenchResult struct {
	Verifications int
	Workers       int
	Total         time.Duration
	Mean          time.Duration
}

// newBenchCmd creates the bench subcommand.
func newBenchCmd(a *app) *cobra.Command {
	cfg := &benchConfig{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure verification cost under the configured parameters",
		Long: `Hash a random password with the configured parameters, then verify it
--count times on --workers concurrent workers sharing the one record.
Use it to pick an iteration count that suits the host.`,
		Args: cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, _ []string) error {
			res, err := runBench(cmd, a, cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"verifications: %d\nworkers: %d\ntotal: %s\nmean: %s\n",
				res.Verifications, res.Workers, res.Total, res.Mean)
			return err
		}),
	}

	cmd.Flags().IntVar(&cfg.workers, "workers", runtime.GOMAXPROCS(0), "concurrent verifications")
	cmd.Flags().IntVar(&cfg.count, "count", 16, "total verifications")

	return cmd
}

func runBench(cmd *cobra.Command, a *app, cfg *benchConfig) (BenchResult, error) {
	if cfg.workers < 1 || cfg.count < 1 {
		return BenchResult{}, oops.Code("CLI_INVALID_ARGUMENT").
			With("workers", cfg.workers).
			With("count", cfg.count).
			Errorf("workers and count must be positive")
	}

	password, err := randomPassword()
	if err != nil {
		return BenchResult{}, err
	}

	rec, err := credential.NewRecord("bench@holocred.invalid")
	if err != nil {
		return BenchResult{}, err
	}
	if err := rec.ChangePasswordContext(cmd.Context(), a.hasher, password); err != nil {
		return BenchResult{}, err
	}

	var busy atomic.Int64
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.workers)

	start := time.Now()
	for i := 0; i < cfg.count; i++ {
		g.Go(func() error {
			t := time.Now()
			ok, err := rec.VerifyPasswordContext(ctx, a.hasher, password)
			busy.Add(int64(time.Since(t)))
			if err != nil {
				return err
			}
			if !ok {
				return oops.Code("CLI_PASSWORD_MISMATCH").
					With("verification", i).
					Errorf("benchmark verification did not match")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BenchResult{}, err
	}

	res := BenchResult{
		Verifications: cfg.count,
		Workers:       cfg.workers,
		Total:         time.Since(start),
		Mean:          time.Duration(busy.Load() / int64(cfg.count)),
	}
	a.logger.InfoContext(cmd.Context(), "benchmark complete",
		"algorithm", a.hasher.Params().Algorithm.String(),
		"iterations", a.hasher.Params().Iterations,
		"verifications", res.Verifications,
		"workers", res.Workers,
		"total", res.Total,
		"mean", res.Mean,
	)
	return res, nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code(credential.CodeCryptoUnavailable).Wrap(err)
	}
	return hex.EncodeToString(buf), nil
}
