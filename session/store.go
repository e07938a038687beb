package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when no session matches the lookup.
var ErrNotFound = errors.New("refresh session not found")

// ErrUnavailable wraps backend failures (network, timeout) so callers
// can tell an outage apart from a genuine miss.
var ErrUnavailable = errors.New("session store unavailable")

// Store persists refresh sessions. Implementations must keep revoked
// records readable until ExpiresAt so token reuse stays detectable.
type Store interface {
	// Create persists a new session record.
	Create(ctx context.Context, sess *RefreshSession) error

	// FindByTokenHash returns the session whose TokenHash matches,
	// revoked or not. ErrNotFound when no record exists.
	FindByTokenHash(ctx context.Context, tokenHash string) (*RefreshSession, error)

	// RevokeIfActive atomically flips the session to revoked and
	// reports whether this call performed the flip. false with a nil
	// error means the session was already revoked; a missing session
	// is ErrNotFound. This is the compare-and-set the one-use
	// invariant rests on.
	RevokeIfActive(ctx context.Context, id string) (bool, error)

	// Revoke marks the session revoked regardless of prior state.
	// Revoking an already revoked session is not an error; a missing
	// session is ErrNotFound.
	Revoke(ctx context.Context, id string) error

	// RevokeAllForAdmin revokes every active session owned by the
	// administrator and returns how many were flipped.
	RevokeAllForAdmin(ctx context.Context, adminID string) (int, error)
}
