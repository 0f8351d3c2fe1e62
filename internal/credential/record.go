// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package credential

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/samber/oops"
)

// Record is an account's login credential: an identity and a salted,
// iteratively hashed password together with the parameters that produced it.
//
// The zero value is an Unset record with no identity. Records are not safe
// for concurrent mutation; concurrent verification of an unchanging record is.
type Record struct {
	Identity     string    `json:"identity" yaml:"identity" jsonschema:"minLength=1"`
	PasswordHash string    `json:"password_hash" yaml:"password_hash" jsonschema:"minLength=32,pattern=^([0-9A-Fa-f]{2})+$"`
	Salt         string    `json:"salt" yaml:"salt" jsonschema:"pattern=^([0-9A-Fa-f]{2})+$"`
	SaltSize     int       `json:"salt_size" yaml:"salt_size" jsonschema:"minimum=1"`
	Iterations   int       `json:"iterations" yaml:"iterations" jsonschema:"minimum=1"`
	Algorithm    Algorithm `json:"algorithm" yaml:"algorithm" jsonschema:"enum=SHA-256,enum=SHA-384,enum=SHA-512"`
}

// NewRecord creates an Unset record for the given identity.
func NewRecord(identity string) (*Record, error) {
	r := &Record{}
	if err := r.ChangeIdentity(identity); err != nil {
		return nil, err
	}
	return r, nil
}

// IsSet reports whether a password has been assigned.
func (r *Record) IsSet() bool {
	return r.PasswordHash != "" && r.Salt != ""
}

// Params returns the parameters stamped on the record by its last password
// change. KeyLength is taken from the stored hash.
func (r *Record) Params() Params {
	return Params{
		SaltSize:   r.SaltSize,
		KeyLength:  len(r.PasswordHash) / 2,
		Iterations: r.Iterations,
		Algorithm:  r.Algorithm,
	}
}

// ChangeIdentity replaces the identity with the trimmed newIdentity.
func (r *Record) ChangeIdentity(newIdentity string) error {
	trimmed := strings.TrimSpace(newIdentity)
	if trimmed == "" {
		return ErrEmptyIdentity
	}
	r.Identity = trimmed
	return nil
}

// ChangePassword re-keys the record: it stamps the hasher's current
// parameters, draws a fresh salt and stores the derived hash. The password
// itself is used verbatim. On error the record is left unchanged.
func (r *Record) ChangePassword(h *Hasher, newPassword string) error {
	if err := checkChangeArgs(h, newPassword); err != nil {
		return err
	}

	m, err := h.newKeyMaterial(context.Background(), newPassword)
	if err != nil {
		return err
	}
	r.apply(h, m)
	return nil
}

// ChangePasswordContext is ChangePassword with the derivation run off the
// caller's goroutine. If ctx ends first the record is left unchanged.
func (r *Record) ChangePasswordContext(ctx context.Context, h *Hasher, newPassword string) error {
	if err := checkChangeArgs(h, newPassword); err != nil {
		return err
	}

	m, err := runDetached(ctx, func() (keyMaterial, error) {
		return h.newKeyMaterial(ctx, newPassword)
	})
	if err != nil {
		return err
	}
	r.apply(h, m)
	return nil
}

// VerifyPassword derives a hash from challenge using the record's own salt,
// iterations and algorithm and compares it in constant time with the stored
// hash. A mismatch is (false, nil), not an error.
func (r *Record) VerifyPassword(h *Hasher, challenge string) (bool, error) {
	if err := checkVerifyArgs(h, challenge); err != nil {
		return false, err
	}
	return r.verify(context.Background(), h, challenge)
}

// VerifyPasswordContext is VerifyPassword with the derivation run off the
// caller's goroutine.
func (r *Record) VerifyPasswordContext(ctx context.Context, h *Hasher, challenge string) (bool, error) {
	if err := checkVerifyArgs(h, challenge); err != nil {
		return false, err
	}

	snapshot := *r
	return runDetached(ctx, func() (bool, error) {
		return snapshot.verify(ctx, h, challenge)
	})
}

func (r *Record) verify(ctx context.Context, h *Hasher, challenge string) (bool, error) {
	if !r.IsSet() {
		return false, ErrUnset
	}

	expected, err := r.storedKey()
	if err != nil {
		return false, err
	}

	computed, err := h.derive(ctx, challenge, r.Salt, r.Iterations, r.Algorithm, len(expected))
	if err != nil {
		return false, err
	}

	match := subtle.ConstantTimeCompare(computed, expected) == 1
	// A canceled caller never sees the verdict, so it is not reported.
	if ctx.Err() == nil {
		h.observer.PasswordVerified(match)
	}
	return match, nil
}

// storedKey decodes the stored hash after checking the stamped parameters
// can drive a derivation.
func (r *Record) storedKey() ([]byte, error) {
	if !r.Algorithm.Valid() {
		return nil, oops.Code(CodeCorrupt).
			With("algorithm", string(r.Algorithm)).
			Errorf("record has unsupported hash algorithm %q", r.Algorithm)
	}
	if r.Iterations < MinIterations {
		return nil, oops.Code(CodeCorrupt).
			With("iterations", r.Iterations).
			Errorf("record has invalid iteration count")
	}
	if r.SaltSize <= 0 || len(r.Salt) != 2*r.SaltSize {
		return nil, oops.Code(CodeCorrupt).
			With("salt_size", r.SaltSize).
			With("salt_length", len(r.Salt)).
			Errorf("record salt does not match its salt size")
	}
	if _, err := hex.DecodeString(r.Salt); err != nil {
		return nil, oops.Code(CodeCorrupt).
			With("field", "salt").
			Wrap(err)
	}

	key, err := hex.DecodeString(r.PasswordHash)
	if err != nil {
		return nil, oops.Code(CodeCorrupt).
			With("field", "password_hash").
			Wrap(err)
	}
	// A short stored hash would let a prefix of the derived key match.
	if len(key) < MinKeyLength {
		return nil, oops.Code(CodeCorrupt).
			With("field", "password_hash").
			With("key_length", len(key)).
			Errorf("record hash is %d bytes, want at least %d", len(key), MinKeyLength)
	}
	return key, nil
}

func (r *Record) apply(h *Hasher, m keyMaterial) {
	r.SaltSize = m.params.SaltSize
	r.Iterations = m.params.Iterations
	r.Algorithm = m.params.Algorithm
	r.Salt = m.salt
	r.PasswordHash = m.hash
	h.observer.PasswordChanged()
}

func checkChangeArgs(h *Hasher, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return ErrEmptyPassword
	}
	if h == nil {
		return ErrNilHasher
	}
	return nil
}

func checkVerifyArgs(h *Hasher, challenge string) error {
	if strings.TrimSpace(challenge) == "" {
		return ErrEmptyChallenge
	}
	if h == nil {
		return ErrNilHasher
	}
	return nil
}
