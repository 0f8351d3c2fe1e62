// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package credential_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/holomush/holocred/internal/credential"
)

// fastParams keeps derivations cheap in tests.
func fastParams() credential.Params {
	return credential.Params{
		SaltSize:   16,
		KeyLength:  32,
		Iterations: 1000,
		Algorithm:  credential.SHA512,
	}
}

func newTestHasher(t *testing.T, opts ...credential.Option) *credential.Hasher {
	t.Helper()
	h, err := credential.NewHasher(fastParams(), opts...)
	require.NoError(t, err)
	return h
}

func newSetRecord(t *testing.T, h *credential.Hasher, password string) *credential.Record {
	t.Helper()
	rec, err := credential.NewRecord("bob@example.com")
	require.NoError(t, err)
	require.NoError(t, rec.ChangePassword(h, password))
	return rec
}

var errRandomUnavailable = errors.New("entropy source unavailable")

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errRandomUnavailable
}

type failingDeriver struct {
	err error
}

func (d failingDeriver) DeriveKey([]byte, []byte, int, credential.Algorithm, int) ([]byte, error) {
	return nil, d.err
}

type shortDeriver struct{}

func (shortDeriver) DeriveKey(_ []byte, _ []byte, _ int, _ credential.Algorithm, keyLen int) ([]byte, error) {
	return make([]byte, keyLen-1), nil
}

// blockingDeriver holds each derivation until release is closed.
type blockingDeriver struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingDeriver() *blockingDeriver {
	return &blockingDeriver{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (d *blockingDeriver) DeriveKey(password, salt []byte, iterations int, alg credential.Algorithm, keyLen int) ([]byte, error) {
	select {
	case d.started <- struct{}{}:
	default:
	}
	<-d.release
	return credential.PBKDF2{}.DeriveKey(password, salt, iterations, alg, keyLen)
}

// fixedDeriver returns a prefix of key and records every requested length.
type fixedDeriver struct {
	key []byte

	mu      sync.Mutex
	keyLens []int
}

func (d *fixedDeriver) DeriveKey(_ []byte, _ []byte, _ int, _ credential.Algorithm, keyLen int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keyLens = append(d.keyLens, keyLen)
	if keyLen > len(d.key) {
		return nil, errors.New("fixed key too short")
	}
	return append([]byte(nil), d.key[:keyLen]...), nil
}

func (d *fixedDeriver) lengths() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.keyLens...)
}

type recordingObserver struct {
	mu          sync.Mutex
	derivations []credential.Algorithm
	failures    int
	changes     int
	matches     int
	mismatches  int
}

func (o *recordingObserver) DerivationCompleted(alg credential.Algorithm, _ int, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.derivations = append(o.derivations, alg)
	if err != nil {
		o.failures++
	}
}

func (o *recordingObserver) PasswordChanged() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.changes++
}

func (o *recordingObserver) PasswordVerified(match bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if match {
		o.matches++
	} else {
		o.mismatches++
	}
}

func (o *recordingObserver) counts() (derivations, verifications int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.derivations), o.matches + o.mismatches
}
