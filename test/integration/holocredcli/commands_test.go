// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package holocredcli_test

import (
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/holocred/internal/recordfile"
)

var _ = Describe("holocred", func() {
	var dir, record string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		record = filepath.Join(dir, "grace.json")

		session := run("lovelace\n", "hash", "--identity", "grace@example.com", "--out", record)
		Expect(session.ExitCode()).To(Equal(0), string(session.Err.Contents()))
	})

	It("writes an owner-only record file", func() {
		info, err := os.Stat(record)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))

		rec, err := recordfile.ReadFile(record)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Identity).To(Equal("grace@example.com"))
		Expect(rec.Iterations).To(Equal(2000))
	})

	It("never logs the password", func() {
		session := run("lovelace\n", "verify", "--record", record)
		Expect(session.ExitCode()).To(Equal(0))
		Expect(string(session.Out.Contents())).To(Equal("match\n"))
		Expect(string(session.Err.Contents())).NotTo(ContainSubstring("lovelace"))
	})

	It("exits non-zero and logs the error code on a wrong password", func() {
		session := run("babbage\n", "verify", "--record", record)
		Expect(session.ExitCode()).NotTo(Equal(0))
		Expect(string(session.Err.Contents())).To(ContainSubstring("CLI_PASSWORD_MISMATCH"))
	})

	It("summarizes the record as JSON", func() {
		session := run("", "inspect", "--record", record, "--json")
		Expect(session.ExitCode()).To(Equal(0))

		var summary map[string]any
		Expect(json.Unmarshal(session.Out.Contents(), &summary)).To(Succeed())
		Expect(summary).To(HaveKeyWithValue("identity", "grace@example.com"))
		Expect(summary).To(HaveKeyWithValue("needs_upgrade", false))
	})

	It("writes metrics for a node exporter textfile collector", func() {
		metrics := filepath.Join(dir, "holocred.prom")

		session := run("", "bench", "--workers", "2", "--count", "4", "--metrics-out", metrics)
		Expect(session.ExitCode()).To(Equal(0))

		data, err := os.ReadFile(metrics)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`holocred_verifications_total{result="match"} 4`))
		Expect(string(data)).To(ContainSubstring("holocred_derivation_duration_seconds_bucket"))
	})
})
