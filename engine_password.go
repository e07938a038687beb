package adminauth

import (
	"context"
	"strconv"
)

// ChangePassword replaces the administrator's password after verifying
// the current one, then revokes every outstanding refresh session so
// stolen tokens die with the old password. The new password must clear
// the password package's length floor (password.ErrTooShort otherwise).
//
// Session revocation is best effort once the new hash is persisted: the
// password change itself is the durable fact, and the audit event
// records when the sweep could not run.
func (e *Engine) ChangePassword(ctx context.Context, adminID, current, next string, meta ClientMeta) error {
	admin, err := e.findAdmin(ctx, adminID)
	if err != nil {
		return err
	}

	ok, err := e.passwords.Verify(current, admin.PasswordHash)
	if err != nil || !ok {
		e.emitAudit(ctx, auditPasswordChanged, false, admin.ID, admin.Email, meta, "current_password_mismatch", nil)
		return ErrInvalidCredentials
	}

	hash, err := e.passwords.Hash(next)
	if err != nil {
		return err
	}
	if err := e.creds.Update(ctx, admin.ID, AdminUpdate{PasswordHash: &hash}); err != nil {
		return storeErr(err)
	}

	metadata := map[string]string{}
	if n, err := e.rotator.RevokeAllForAdmin(ctx, adminID); err != nil {
		metadata["session_sweep"] = "failed"
	} else {
		metadata["sessions_revoked"] = strconv.Itoa(n)
	}

	e.metricInc(MetricPasswordChanged)
	e.emitAudit(ctx, auditPasswordChanged, true, admin.ID, admin.Email, meta, "", metadata)
	return nil
}
