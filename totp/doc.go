// Package totp implements the second-factor engine: RFC 6238 time-based
// one-time codes, authenticator provisioning URIs, backup codes, and the
// at-rest encryption of shared secrets.
//
// # Code verification
//
// Codes are HMAC-SHA1, 6 digits, 30-second steps (the authenticator-app
// defaults). Verification checks the current step plus one adjacent step on
// each side, tolerating about a minute of clock drift between server and
// device. Each window comparison is constant-time.
//
// # Secrets at rest
//
// A shared secret is never persisted in plaintext. [SecretCipher] seals it
// with AES-256-GCM under a server-held key; every sealed blob carries its own
// random nonce. Backup codes are persisted only as salted SHA-256 hashes.
//
// # What this package must NOT do
//
//   - Touch any store (enrollment state lives with the caller).
//   - Log secrets, codes, or plaintext of any kind.
//   - Import adminauth, jwt, or session.
package totp
