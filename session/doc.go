// Package session owns opaque refresh tokens and their one-use rotation
// lifecycle for the admin auth engine.
//
// # Token handling
//
// A refresh token is 256 bits of randomness, URL-safe base64 encoded. The
// raw value is returned to the client exactly once; stores only ever see
// its keyed HMAC-SHA256 hash, so a leaked store snapshot cannot be replayed
// as tokens.
//
// # Rotation
//
// The [Rotator] enforces the one-use invariant. Rotation revokes the
// presented token through a compare-and-set at the store ([Store.RevokeIfActive])
// before a replacement is issued, so two concurrent rotations of the same
// token can never both succeed. Revoked records stay in the store until
// their natural expiry, which keeps replay of an already-rotated token
// observable as a distinct security event rather than a generic miss.
//
// # Architecture boundaries
//
// This package owns refresh token persistence ([Store] and its memory and
// Redis implementations) and the rotation state machine. It does NOT mint
// access tokens, evaluate permissions, or decide what a failed rotation
// means to a client — those belong to the engine.
//
// # What this package must NOT do
//
//   - Store or log a raw refresh token. Only hashes are persisted.
//   - Import the root engine package, jwt, or permission (no upward imports).
//   - Collapse rotation failures: not-found, revoked, expired, and invalid
//     owner stay distinct sentinels so the engine can audit reuse.
package session
