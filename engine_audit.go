package adminauth

import (
	"context"
	"time"
)

// Audit event vocabulary. Names are part of the operational contract;
// downstream alerting matches on them.
const (
	auditLoginFailed      = "login_failed"
	auditLoginSuccess     = "login_success"
	auditLogin2FARequired = "login_2fa_required"

	auditTwoFactorFailed  = "two_factor_failed"
	auditTwoFactorSuccess = "two_factor_success"

	auditRefreshRevokedUsed = "refresh_token_revoked_used"
	auditTokenRefreshed     = "token_refreshed"

	auditTwoFactorEnabled  = "2fa_enabled"
	auditTwoFactorDisabled = "2fa_disabled"

	auditLogout          = "logout"
	auditLogoutAll       = "logout_all"
	auditPasswordChanged = "password_changed"
)

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, adminID, email string, meta ClientMeta, reason string, metadata map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	e.audit.Emit(ctx, AuditEvent{
		Time:      e.now().UTC(),
		Type:      eventType,
		AdminID:   adminID,
		Email:     email,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Success:   success,
		Reason:    reason,
		Metadata:  metadata,
	})
}

func (e *Engine) now() time.Time {
	if e.clock != nil {
		return e.clock()
	}
	return time.Now()
}
