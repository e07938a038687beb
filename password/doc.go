// Package password hashes and verifies administrator login credentials using
// argon2id in PHC string format.
//
// Hashes are self-describing ($argon2id$v=19$m=...,t=...,p=...$salt$key), so
// cost parameters can be raised without invalidating stored credentials:
// [Verifier.NeedsRehash] reports when a stored hash was produced with weaker
// parameters than the verifier is configured for, and callers rehash on the
// next successful login or password change.
//
// # What this package must NOT do
//
//   - Enforce password policy beyond a hard length floor (policy is a boundary
//     concern).
//   - Log or retain plaintext passwords.
//   - Import adminauth or any store package.
package password
