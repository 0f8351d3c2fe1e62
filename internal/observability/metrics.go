// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package observability provides Prometheus metrics for credential hashing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/oops"

	"github.com/holomush/holocred/internal/credential"
)

// Verification outcome label values.
const (
	ResultMatch    = "match"
	ResultMismatch = "mismatch"
)

// Metrics records hashing activity. It implements credential.Observer.
type Metrics struct {
	DerivationDuration *prometheus.HistogramVec
	DerivationFailures *prometheus.CounterVec
	PasswordChanges    prometheus.Counter
	Verifications      *prometheus.CounterVec
}

var _ credential.Observer = (*Metrics)(nil)

// NewMetrics creates and registers the credential metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DerivationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "holocred_derivation_duration_seconds",
				Help: "Time spent deriving password keys by hash algorithm",
				// PBKDF2 at production iteration counts runs from tens of
				// milliseconds to a few seconds.
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"algorithm"},
		),
		DerivationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "holocred_derivation_failures_total",
				Help: "Total number of failed key derivations by hash algorithm",
			},
			[]string{"algorithm"},
		),
		PasswordChanges: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "holocred_password_changes_total",
				Help: "Total number of successful password changes",
			},
		),
		Verifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "holocred_verifications_total",
				Help: "Total number of completed password verifications by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(m.DerivationDuration)
	reg.MustRegister(m.DerivationFailures)
	reg.MustRegister(m.PasswordChanges)
	reg.MustRegister(m.Verifications)

	return m
}

// DerivationCompleted records the duration of a derivation, or a failure.
func (m *Metrics) DerivationCompleted(alg credential.Algorithm, _ int, elapsed time.Duration, err error) {
	if err != nil {
		m.DerivationFailures.WithLabelValues(alg.String()).Inc()
		return
	}
	m.DerivationDuration.WithLabelValues(alg.String()).Observe(elapsed.Seconds())
}

// PasswordChanged counts a successful password change.
func (m *Metrics) PasswordChanged() {
	m.PasswordChanges.Inc()
}

// PasswordVerified counts a verification by outcome.
func (m *Metrics) PasswordVerified(match bool) {
	result := ResultMismatch
	if match {
		result = ResultMatch
	}
	m.Verifications.WithLabelValues(result).Inc()
}

// NewRegistry creates a registry with the standard Go and process collectors
// and the credential metrics registered on it.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	// Create a new registry to avoid polluting the global one
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return registry, NewMetrics(registry)
}

// WriteTextfile writes every metric in g to path in the Prometheus text
// format, for collection by a node exporter textfile collector.
func WriteTextfile(g prometheus.Gatherer, path string) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return oops.Code("OBSERVABILITY_WRITE_FAILED").
			With("path", path).
			Wrap(err)
	}
	return nil
}
