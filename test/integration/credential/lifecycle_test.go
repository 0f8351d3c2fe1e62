// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package credential_test

import (
	"context"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/holomush/holocred/internal/credential"
	"github.com/holomush/holocred/internal/observability"
	"github.com/holomush/holocred/internal/recordfile"
	"github.com/holomush/holocred/pkg/errutil"
)

func policy(iterations int, alg credential.Algorithm) credential.Params {
	return credential.Params{
		SaltSize:   32,
		KeyLength:  32,
		Iterations: iterations,
		Algorithm:  alg,
	}
}

var _ = Describe("Credential record lifecycle", func() {
	var (
		ctx     context.Context
		metrics *observability.Metrics
		hasher  *credential.Hasher
	)

	BeforeEach(func() {
		ctx = context.Background()
		metrics = observability.NewMetrics(prometheus.NewRegistry())

		var err error
		hasher, err = credential.NewHasher(policy(5000, credential.SHA512), credential.WithObserver(metrics))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("a new account", func() {
		It("moves from Unset to Set and survives a trip through a record file", func() {
			rec, err := credential.NewRecord("  carol@example.com  ")
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.IsSet()).To(BeFalse())

			_, err = rec.VerifyPasswordContext(ctx, hasher, "anything")
			Expect(errutil.Code(err)).To(Equal(credential.CodeUnset))

			Expect(rec.ChangePasswordContext(ctx, hasher, "s3cret passphrase")).To(Succeed())
			Expect(rec.IsSet()).To(BeTrue())

			path := filepath.Join(GinkgoT().TempDir(), "carol.yaml")
			Expect(recordfile.WriteFile(path, rec)).To(Succeed())

			loaded, err := recordfile.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Identity).To(Equal("carol@example.com"))

			ok, err := loaded.VerifyPasswordContext(ctx, hasher, "s3cret passphrase")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = loaded.VerifyPasswordContext(ctx, hasher, "s3cret passphrase ")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			Expect(testutil.ToFloat64(metrics.PasswordChanges)).To(BeNumerically("==", 1))
			Expect(testutil.ToFloat64(metrics.Verifications.WithLabelValues(observability.ResultMatch))).To(BeNumerically("==", 1))
			Expect(testutil.ToFloat64(metrics.Verifications.WithLabelValues(observability.ResultMismatch))).To(BeNumerically("==", 1))
		})
	})

	Describe("a policy change", func() {
		It("keeps old records verifiable and flags them for upgrade", func() {
			legacy, err := credential.NewHasher(policy(1000, credential.SHA256))
			Expect(err).NotTo(HaveOccurred())

			rec, err := credential.NewRecord("dave@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.ChangePassword(legacy, "hunter2")).To(Succeed())

			Expect(hasher.NeedsUpgrade(rec)).To(BeTrue())

			ok, err := rec.VerifyPassword(hasher, "hunter2")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			Expect(rec.ChangePassword(hasher, "hunter2")).To(Succeed())
			Expect(rec.Algorithm).To(Equal(credential.SHA512))
			Expect(rec.Iterations).To(Equal(5000))
			Expect(hasher.NeedsUpgrade(rec)).To(BeFalse())

			ok, err = rec.VerifyPassword(legacy, "hunter2")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue(), "verification never depends on the verifier's defaults")
		})
	})

	Describe("concurrent verification", func() {
		It("gives every reader the same answer for an unchanging record", func() {
			rec, err := credential.NewRecord("erin@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.ChangePassword(hasher, "open sesame")).To(Succeed())

			const readers = 8
			results := make([]bool, readers)
			errs := make([]error, readers)

			var wg sync.WaitGroup
			for i := range readers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					challenge := "open sesame"
					if i%2 == 1 {
						challenge = "close sesame"
					}
					results[i], errs[i] = rec.VerifyPasswordContext(ctx, hasher, challenge)
				}()
			}
			wg.Wait()

			for i := range readers {
				Expect(errs[i]).NotTo(HaveOccurred())
				Expect(results[i]).To(Equal(i%2 == 0))
			}
		})
	})

	Describe("cancellation", func() {
		It("leaves the record untouched when the context is already done", func() {
			rec, err := credential.NewRecord("frank@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.ChangePassword(hasher, "first")).To(Succeed())
			before := *rec

			canceled, cancel := context.WithCancel(ctx)
			cancel()

			err = rec.ChangePasswordContext(canceled, hasher, "second")
			Expect(errutil.Code(err)).To(Equal(credential.CodeCanceled))
			Expect(err).To(MatchError(context.Canceled))
			Expect(*rec).To(Equal(before))
		})
	})
})
