// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package credential provides the account credential record for HoloMUSH
// logins.
//
// # Records and Hashers
//
// A Record holds an identity (email) and a PBKDF2 password hash together with
// the salt, salt size, iteration count and algorithm that produced it. A
// Hasher carries the current hashing policy (Params) and the primitives the
// record needs: a secure random source and a key deriver.
//
//   - Record.ChangePassword stamps the hasher's current Params on the record.
//   - Record.VerifyPassword uses the Params stamped on the record, never the
//     hasher's, so raising the policy does not break older records.
//   - Hasher.NeedsUpgrade tells callers when to re-key after a successful login.
//
// Validation happens before mutation; a failed change leaves the record as it
// was. Errors are oops errors carrying one of the Code* constants.
package credential
