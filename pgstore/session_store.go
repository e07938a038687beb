package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/norventa/adminauth/session"
)

// SessionStore is the Postgres session.Store. Obtain one from
// Store.Sessions.
type SessionStore struct {
	db *sql.DB
}

var _ session.Store = (*SessionStore)(nil)

const sessionColumns = `id, admin_id, token_hash, ip, user_agent,
	expires_at, revoked, created_at`

func (s *SessionStore) Create(ctx context.Context, sess *session.RefreshSession) error {
	_, err := s.db.ExecContext(ctx, `
		insert into admin_refresh_sessions (`+sessionColumns+`)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
	`, sess.ID, sess.AdminID, sess.TokenHash, sess.IP, sess.UserAgent,
		sess.ExpiresAt, sess.Revoked, sess.CreatedAt)
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *SessionStore) FindByTokenHash(ctx context.Context, tokenHash string) (*session.RefreshSession, error) {
	row := s.db.QueryRowContext(ctx, `
		select `+sessionColumns+` from admin_refresh_sessions where token_hash = $1
	`, tokenHash)

	var sess session.RefreshSession
	err := row.Scan(&sess.ID, &sess.AdminID, &sess.TokenHash, &sess.IP, &sess.UserAgent,
		&sess.ExpiresAt, &sess.Revoked, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, unavailable(err)
	}
	return &sess, nil
}

// RevokeIfActive is the compare-and-set the one-use rotation invariant
// rests on. The conditional update either flips exactly one live row or
// touches nothing; a zero row count is then split into already-revoked
// and missing by a follow-up read.
func (s *SessionStore) RevokeIfActive(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		update admin_refresh_sessions set revoked = true
		where id = $1 and revoked = false
	`, id)
	if err != nil {
		return false, unavailable(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, unavailable(err)
	}
	if affected > 0 {
		return true, nil
	}

	var revoked bool
	err = s.db.QueryRowContext(ctx,
		`select revoked from admin_refresh_sessions where id = $1`, id,
	).Scan(&revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, session.ErrNotFound
	}
	if err != nil {
		return false, unavailable(err)
	}
	return false, nil
}

func (s *SessionStore) Revoke(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`update admin_refresh_sessions set revoked = true where id = $1`, id)
	if err != nil {
		return unavailable(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return unavailable(err)
	}
	if affected == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (s *SessionStore) RevokeAllForAdmin(ctx context.Context, adminID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		update admin_refresh_sessions set revoked = true
		where admin_id = $1 and revoked = false
	`, adminID)
	if err != nil {
		return 0, unavailable(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable(err)
	}
	return int(affected), nil
}

// DeleteExpired removes rows whose expiry lies before cutoff. Expired
// rows no longer authenticate either way; this is garbage collection
// for a batch job, not part of the Store contract.
func (s *SessionStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`delete from admin_refresh_sessions where expires_at < $1`, cutoff)
	if err != nil {
		return 0, unavailable(err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable(err)
	}
	return deleted, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", session.ErrUnavailable, err)
}
