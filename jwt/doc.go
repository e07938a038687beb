// Package jwt mints and verifies the short-lived HS256 access tokens carrying
// administrator identity (id, email, role). Verification is purely
// cryptographic and never touches a store.
//
// Expiry is the one failure callers may want to distinguish (to hint a refresh
// at the boundary), so [Manager.ParseAccess] returns [ErrTokenExpired] when the
// only problem is lifetime and [ErrTokenInvalid] for everything else. Tokens
// signed with any algorithm other than HS256, including "none", are rejected
// before signature verification.
package jwt
