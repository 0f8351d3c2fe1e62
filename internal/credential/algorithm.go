// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package credential

import (
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"strings"

	"github.com/samber/oops"
)

// Algorithm names the hash function a record's key derivation runs on.
// The value is the stable external name written to serialized records.
type Algorithm string

// Supported algorithms. Anything weaker than SHA-256 is rejected.
const (
	SHA256 Algorithm = "SHA-256"
	SHA384 Algorithm = "SHA-384"
	SHA512 Algorithm = "SHA-512"
)

// Algorithms returns the supported algorithms, weakest first.
func Algorithms() []Algorithm {
	return []Algorithm{SHA256, SHA384, SHA512}
}

// ParseAlgorithm accepts an algorithm name case-insensitively, with or
// without the dash ("sha512", "SHA-512").
func ParseAlgorithm(name string) (Algorithm, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", ""))
	for _, alg := range Algorithms() {
		if strings.ReplaceAll(string(alg), "-", "") == normalized {
			return alg, nil
		}
	}
	return "", oops.Code(CodeInvalidParams).
		With("algorithm", name).
		Errorf("unsupported hash algorithm: %q", name)
}

// Valid reports whether a is one of the supported algorithms.
func (a Algorithm) Valid() bool {
	_, ok := a.hashFunc()
	return ok
}

// String returns the external name.
func (a Algorithm) String() string {
	return string(a)
}

func (a Algorithm) hashFunc() (func() hash.Hash, bool) {
	switch a {
	case SHA256:
		return sha256.New, true
	case SHA384:
		return sha512.New384, true
	case SHA512:
		return sha512.New, true
	default:
		return nil, false
	}
}
