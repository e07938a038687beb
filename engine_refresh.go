package adminauth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/norventa/adminauth/session"
)

// Refresh rotates the presented refresh token and mints a fresh access
// token for its owner. Every business failure (unknown, already used,
// expired, owner gone or deactivated) collapses to
// ErrInvalidOrExpiredRefreshToken; store failures wrap
// ErrStoreUnavailable instead. Reuse of an already-consumed token is
// the replay signal and gets its own audit event and counter.
func (e *Engine) Refresh(ctx context.Context, rawToken string, meta ClientMeta) (*TokenPair, error) {
	owner, nextRaw, sess, err := e.rotator.Rotate(ctx, rawToken, meta)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrTokenRevoked):
			e.metricInc(MetricRefreshFailure)
			e.metricInc(MetricRefreshReuseDetected)
			adminID := ""
			if sess != nil {
				adminID = sess.AdminID
			}
			e.emitAudit(ctx, auditRefreshRevokedUsed, false, adminID, "", meta, "revoked_token_reuse", nil)
			return nil, ErrInvalidOrExpiredRefreshToken
		case errors.Is(err, session.ErrTokenNotFound),
			errors.Is(err, session.ErrTokenExpired),
			errors.Is(err, session.ErrOwnerInvalid):
			e.metricInc(MetricRefreshFailure)
			return nil, ErrInvalidOrExpiredRefreshToken
		default:
			return nil, storeErr(err)
		}
	}

	access, expiresAt, err := e.tokens.CreateAccess(owner.ID, owner.Email, owner.Role)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditTokenRefreshed, true, owner.ID, owner.Email, meta, "", nil)
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: nextRaw,
		ExpiresAt:    expiresAt,
	}, nil
}

// Logout revokes the session behind the raw token. Best effort: logout
// never fails from the caller's point of view, whether the token is
// unknown, already revoked, or the store is down.
func (e *Engine) Logout(ctx context.Context, rawToken string) error {
	sess, err := e.rotator.Revoke(ctx, rawToken)
	if err != nil {
		return nil
	}
	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditLogout, true, sess.AdminID, "", ClientMeta{IP: sess.IP, UserAgent: sess.UserAgent}, "", nil)
	return nil
}

// LogoutAll revokes every active refresh session the administrator
// owns and reports how many were hit. Unlike Logout this surfaces
// store failures: it is the kick-everyone-out control and the caller
// must know when it did not take effect.
func (e *Engine) LogoutAll(ctx context.Context, adminID string) (int, error) {
	n, err := e.rotator.RevokeAllForAdmin(ctx, adminID)
	if err != nil {
		return 0, storeErr(err)
	}
	e.metricInc(MetricLogoutAll)
	e.emitAudit(ctx, auditLogoutAll, true, adminID, "", ClientMeta{}, "", map[string]string{
		"sessions": strconv.Itoa(n),
	})
	return n, nil
}
