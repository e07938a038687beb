package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Rotation outcomes. The engine maps these onto its public error
// surface; they stay distinct here so revoked-token reuse can be
// audited separately from ordinary misses.
var (
	ErrTokenNotFound = errors.New("refresh token unknown")
	ErrTokenRevoked  = errors.New("refresh token already revoked")
	ErrTokenExpired  = errors.New("refresh token expired")
	ErrOwnerInvalid  = errors.New("refresh token owner missing or inactive")
)

// ErrOwnerNotFound is the contract for OwnerSource implementations:
// return it (wrapped or not) when the administrator does not exist, so
// the rotator can tell a missing owner from a backend failure.
var ErrOwnerNotFound = errors.New("session owner not found")

// OwnerSource resolves the administrator owning a session at rotation
// time. The rotator re-checks the owner on every rotation so disabled
// accounts lose refresh access immediately.
type OwnerSource interface {
	FindOwner(ctx context.Context, adminID string) (Owner, error)
}

const (
	minPepperBytes = 16
	defaultTTL     = 7 * 24 * time.Hour
)

// Config carries rotator tuning. Pepper is required; TTL defaults to
// seven days; Now defaults to time.Now.
type Config struct {
	Pepper []byte
	TTL    time.Duration
	Now    func() time.Time
}

// Rotator issues refresh tokens and enforces their one-use lifecycle.
type Rotator struct {
	store  Store
	owners OwnerSource
	pepper []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewRotator(store Store, owners OwnerSource, cfg Config) (*Rotator, error) {
	if store == nil {
		return nil, errors.New("session: store is required")
	}
	if owners == nil {
		return nil, errors.New("session: owner source is required")
	}
	if len(cfg.Pepper) < minPepperBytes {
		return nil, fmt.Errorf("session: pepper must be at least %d bytes", minPepperBytes)
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Rotator{
		store:  store,
		owners: owners,
		pepper: cfg.Pepper,
		ttl:    cfg.TTL,
		now:    cfg.Now,
	}, nil
}

// Issue creates a fresh session for the administrator and returns the
// raw token alongside the stored record. The raw value exists only in
// the return value; the store receives its hash.
func (r *Rotator) Issue(ctx context.Context, adminID string, meta Meta) (string, *RefreshSession, error) {
	raw, err := NewRawToken()
	if err != nil {
		return "", nil, err
	}

	now := r.now()
	sess := &RefreshSession{
		ID:        uuid.NewString(),
		AdminID:   adminID,
		TokenHash: HashToken(r.pepper, raw),
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		ExpiresAt: now.Add(r.ttl),
		CreatedAt: now,
	}
	if err := r.store.Create(ctx, sess); err != nil {
		return "", nil, err
	}
	return raw, sess, nil
}

// Rotate consumes the presented raw token and issues a replacement for
// the same administrator. Exactly one concurrent Rotate of a given
// token can succeed; the losers observe ErrTokenRevoked.
//
// On revoked, expired, and owner-invalid failures the stored record is
// returned alongside the error so callers can attribute the attempt in
// audit logs.
//
// The presented token is consumed before the replacement is written, so
// a store failure between the two steps burns the token without issuing
// a new one. The client recovers by logging in again; the invariant
// that a token never works twice is kept even on that path.
func (r *Rotator) Rotate(ctx context.Context, rawToken string, meta Meta) (Owner, string, *RefreshSession, error) {
	sess, err := r.store.FindByTokenHash(ctx, HashToken(r.pepper, rawToken))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Owner{}, "", nil, ErrTokenNotFound
		}
		return Owner{}, "", nil, err
	}

	if sess.Revoked {
		return Owner{}, "", sess, ErrTokenRevoked
	}
	if !sess.ExpiresAt.After(r.now()) {
		return Owner{}, "", sess, ErrTokenExpired
	}

	flipped, err := r.store.RevokeIfActive(ctx, sess.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Owner{}, "", nil, ErrTokenNotFound
		}
		return Owner{}, "", nil, err
	}
	if !flipped {
		// Lost the race: another rotation consumed this token first.
		return Owner{}, "", sess, ErrTokenRevoked
	}

	owner, err := r.owners.FindOwner(ctx, sess.AdminID)
	if err != nil {
		if errors.Is(err, ErrOwnerNotFound) {
			return Owner{}, "", sess, ErrOwnerInvalid
		}
		return Owner{}, "", nil, err
	}
	if !owner.Active {
		return Owner{}, "", sess, ErrOwnerInvalid
	}

	raw, next, err := r.Issue(ctx, sess.AdminID, meta)
	if err != nil {
		return Owner{}, "", nil, err
	}
	return owner, raw, next, nil
}

// Revoke marks the session behind the raw token revoked and returns the
// record that was hit. Missing tokens report ErrTokenNotFound; already
// revoked ones are a no-op.
func (r *Rotator) Revoke(ctx context.Context, rawToken string) (*RefreshSession, error) {
	sess, err := r.store.FindByTokenHash(ctx, HashToken(r.pepper, rawToken))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	if err := r.store.Revoke(ctx, sess.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	sess.Revoked = true
	return sess, nil
}

// RevokeAllForAdmin revokes every active session the administrator
// owns, returning how many were flipped.
func (r *Rotator) RevokeAllForAdmin(ctx context.Context, adminID string) (int, error) {
	return r.store.RevokeAllForAdmin(ctx, adminID)
}
