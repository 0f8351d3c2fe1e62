// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package credential

import "github.com/samber/oops"

// Defaults applied to new and changed passwords.
const (
	DefaultSaltSize   = 64
	DefaultKeyLength  = 64
	DefaultIterations = 350000
	DefaultAlgorithm  = SHA512
)

// Lower bounds accepted by Params.Validate.
const (
	MinSaltSize   = 8
	MinKeyLength  = 16
	MinIterations = 1
)

// Params is the hashing policy stamped onto a record when its password changes.
// Verification never consults Params; it uses the values stamped on the record.
type Params struct {
	SaltSize   int
	KeyLength  int
	Iterations int
	Algorithm  Algorithm
}

// DefaultParams returns the production hashing policy.
func DefaultParams() Params {
	return Params{
		SaltSize:   DefaultSaltSize,
		KeyLength:  DefaultKeyLength,
		Iterations: DefaultIterations,
		Algorithm:  DefaultAlgorithm,
	}
}

// Validate checks the policy against the lower bounds.
func (p Params) Validate() error {
	if p.SaltSize < MinSaltSize {
		return oops.Code(CodeInvalidParams).
			With("salt_size", p.SaltSize).
			Errorf("salt size must be at least %d bytes", MinSaltSize)
	}
	if p.KeyLength < MinKeyLength {
		return oops.Code(CodeInvalidParams).
			With("key_length", p.KeyLength).
			Errorf("key length must be at least %d bytes", MinKeyLength)
	}
	if p.Iterations < MinIterations {
		return oops.Code(CodeInvalidParams).
			With("iterations", p.Iterations).
			Errorf("iterations must be at least %d", MinIterations)
	}
	if !p.Algorithm.Valid() {
		return oops.Code(CodeInvalidParams).
			With("algorithm", string(p.Algorithm)).
			Errorf("unsupported hash algorithm: %q", p.Algorithm)
	}
	return nil
}
