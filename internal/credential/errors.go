// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package credential

import "github.com/samber/oops"

// Error codes carried by errors from this package.
const (
	CodeInvalidArgument   = "CREDENTIAL_INVALID_ARGUMENT"
	CodeCryptoUnavailable = "CREDENTIAL_CRYPTO_UNAVAILABLE"
	CodeUnset             = "CREDENTIAL_UNSET"
	CodeCorrupt           = "CREDENTIAL_CORRUPT"
	CodeInvalidParams     = "CREDENTIAL_INVALID_PARAMS"
	CodeCanceled          = "CREDENTIAL_CANCELED"
)

var (
	// ErrEmptyIdentity is returned when an identity is empty or whitespace.
	ErrEmptyIdentity = oops.Code(CodeInvalidArgument).
		With("argument", "identity").
		Errorf("identity cannot be empty or whitespace")

	// ErrEmptyPassword is returned when a new password is empty or whitespace.
	ErrEmptyPassword = oops.Code(CodeInvalidArgument).
		With("argument", "password").
		Errorf("password cannot be empty or whitespace")

	// ErrEmptyChallenge is returned when a challenge password is empty or whitespace.
	ErrEmptyChallenge = oops.Code(CodeInvalidArgument).
		With("argument", "challenge").
		Errorf("challenge password cannot be empty or whitespace")

	// ErrNilHasher is returned when an operation is called without a hasher.
	ErrNilHasher = oops.Code(CodeInvalidArgument).
		With("argument", "hasher").
		Errorf("hasher is required")

	// ErrUnset is returned when verifying against a record with no password.
	ErrUnset = oops.Code(CodeUnset).Errorf("record has no password set")
)
