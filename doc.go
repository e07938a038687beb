// Package adminauth is the authentication and authorization core for a
// supplier-business admin application: argon2id credential checks, HS256
// access tokens, one-use rotating refresh tokens, optional TOTP second
// factor with single-use backup codes, and a fixed four-role permission
// table over the catalog and quote resources.
//
// The package is built for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// adminauth is the public surface. It exposes [Engine], [Builder], [Config]
// and value types ([LoginResult], [Identity], [TwoFactorSetup]). Credential
// and session persistence sit behind the [CredentialStore] and
// session.Store interfaces; the pgstore package and the in-memory stores
// implement them. Audit delivery and metric counters live under internal/
// and surface only through re-exported types and snapshots.
//
// # What this package must NOT do
//
//   - Terminate HTTP or parse transport artifacts beyond the bearer token
//     string. Rate limiting, TLS, and email delivery belong to outer layers.
//   - Return different errors for unknown email, inactive account, and
//     wrong password at login. All three are [ErrInvalidCredentials].
//   - Hand out raw refresh tokens more than once or persist them anywhere.
//
// # Performance contract
//
// VerifyAccessToken is the hot path: pure JWT verification, no store
// round-trips. Login, Refresh, and the 2FA operations are allowed one
// credential-store and one session-store round-trip each.
package adminauth
