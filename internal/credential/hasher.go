// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package credential

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"strings"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/pbkdf2"
)

var tracer = otel.Tracer("holocred/credential")

// KeyDeriver derives key material from a password.
type KeyDeriver interface {
	// DeriveKey returns exactly keyLen bytes derived from password and salt.
	DeriveKey(password, salt []byte, iterations int, alg Algorithm, keyLen int) ([]byte, error)
}

// PBKDF2 implements KeyDeriver with PBKDF2-HMAC over the record's algorithm.
type PBKDF2 struct{}

// DeriveKey runs PBKDF2-HMAC.
func (PBKDF2) DeriveKey(password, salt []byte, iterations int, alg Algorithm, keyLen int) ([]byte, error) {
	newHash, ok := alg.hashFunc()
	if !ok {
		return nil, oops.Code(CodeInvalidParams).
			With("algorithm", string(alg)).
			Errorf("unsupported hash algorithm: %q", alg)
	}
	if iterations < MinIterations || keyLen <= 0 {
		return nil, oops.Code(CodeInvalidParams).
			With("iterations", iterations).
			With("key_length", keyLen).
			Errorf("invalid derivation parameters")
	}
	return pbkdf2.Key(password, salt, iterations, keyLen, newHash), nil
}

// Observer receives notifications about hashing work. Implementations must
// be safe for concurrent use and must not block.
type Observer interface {
	// DerivationCompleted is called after every key derivation.
	DerivationCompleted(alg Algorithm, iterations int, elapsed time.Duration, err error)

	// PasswordChanged is called after a record was re-keyed.
	PasswordChanged()

	// PasswordVerified is called after a challenge was compared, unless the
	// caller's context ended first. DerivationCompleted is still reported
	// for such a derivation.
	PasswordVerified(match bool)
}

type nopObserver struct{}

func (nopObserver) DerivationCompleted(Algorithm, int, time.Duration, error) {}
func (nopObserver) PasswordChanged() {}
func (nopObserver) PasswordVerified(bool) {}

// Option configures a Hasher.
type Option func(*Hasher)

// WithRandom sets the random source used for salts.
func WithRandom(r io.Reader) Option {
	return func(h *Hasher) {
		if r != nil {
			h.random = r
		}
	}
}

// WithKeyDeriver replaces the PBKDF2 key derivation.
func WithKeyDeriver(d KeyDeriver) Option {
	return func(h *Hasher) {
		if d != nil {
			h.deriver = d
		}
	}
}

// WithObserver sets the observer notified about hashing work.
func WithObserver(o Observer) Option {
	return func(h *Hasher) {
		if o != nil {
			h.observer = o
		}
	}
}

// Hasher carries the current hashing policy and the primitives records need
// to change and verify passwords. A Hasher is immutable after construction.
type Hasher struct {
	params   Params
	random   io.Reader
	deriver  KeyDeriver
	observer Observer
}

// NewHasher creates a Hasher that stamps params onto changed passwords.
func NewHasher(params Params, opts ...Option) (*Hasher, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	h := &Hasher{
		params:   params,
		random:   rand.Reader,
		deriver:  PBKDF2{},
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Params returns the policy applied to new and changed passwords.
func (h *Hasher) Params() Params {
	return h.params
}

// NeedsUpgrade reports whether a set record was hashed under a weaker policy
// than the current one, or under a different algorithm or key length.
func (h *Hasher) NeedsUpgrade(r *Record) bool {
	if r == nil || !r.IsSet() {
		return false
	}

	stamped := r.Params()
	switch {
	case stamped.Iterations < h.params.Iterations:
		return true
	case stamped.SaltSize < h.params.SaltSize:
		return true
	case stamped.Algorithm != h.params.Algorithm:
		return true
	case stamped.KeyLength != h.params.KeyLength:
		return true
	}
	return false
}

// keyMaterial is the output of a password change before it is applied.
type keyMaterial struct {
	salt   string
	hash   string
	params Params
}

func (h *Hasher) newKeyMaterial(ctx context.Context, password string) (keyMaterial, error) {
	p := h.params

	salt, err := h.newSalt(p.SaltSize)
	if err != nil {
		return keyMaterial{}, err
	}

	key, err := h.derive(ctx, password, salt, p.Iterations, p.Algorithm, p.KeyLength)
	if err != nil {
		return keyMaterial{}, err
	}

	return keyMaterial{salt: salt, hash: encodeHex(key), params: p}, nil
}

func (h *Hasher) newSalt(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(h.random, buf); err != nil {
		return "", oops.Code(CodeCryptoUnavailable).
			With("operation", "generate salt").
			Wrap(err)
	}
	return encodeHex(buf), nil
}

// derive feeds the salt to the KDF as the bytes of its hex text, which keeps
// records written by earlier account servers verifiable.
func (h *Hasher) derive(ctx context.Context, password, salt string, iterations int, alg Algorithm, keyLen int) (key []byte, err error) {
	_, span := tracer.Start(ctx, "credential.derive",
		trace.WithAttributes(
			attribute.String("credential.algorithm", string(alg)),
			attribute.Int("credential.iterations", iterations),
			attribute.Int("credential.key_length", keyLen),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	start := time.Now()
	key, err = h.deriver.DeriveKey([]byte(password), []byte(salt), iterations, alg, keyLen)
	if err == nil && len(key) != keyLen {
		err = oops.Code(CodeCryptoUnavailable).
			With("key_length", keyLen).
			With("derived_length", len(key)).
			Errorf("key derivation returned %d bytes, want %d", len(key), keyLen)
	}
	h.observer.DerivationCompleted(alg, iterations, time.Since(start), err)

	if err != nil {
		if _, ok := oops.AsOops(err); ok {
			return nil, err
		}
		return nil, oops.Code(CodeCryptoUnavailable).
			With("operation", "derive key").
			Wrap(err)
	}
	return key, nil
}

func encodeHex(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// runDetached runs fn on its own goroutine and returns when fn finishes or
// ctx ends, whichever comes first. A late result is discarded.
func runDetached[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, canceled(err)
	}

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return zero, canceled(ctx.Err())
	case r := <-done:
		return r.value, r.err
	}
}

func canceled(err error) error {
	return oops.Code(CodeCanceled).Wrap(err)
}
