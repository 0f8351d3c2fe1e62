// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package recordfile encodes credential records as versioned JSON or YAML
// documents.
//
// A document carries a format version and one record:
//
//	format_version: 1.0.0
//	record:
//	  identity: alice@example.com
//	  password_hash: 9F2C...
//	  salt: 41D0...
//	  salt_size: 64
//	  iterations: 350000
//	  algorithm: SHA-512
//
// Documents are validated against a JSON Schema reflected from Document
// before they are decoded, and only format versions matching ^1 are read.
package recordfile
