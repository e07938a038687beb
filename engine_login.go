package adminauth

import (
	"context"
	"errors"

	"github.com/norventa/adminauth/totp"
)

// Login is the first authentication step. Unknown email, inactive
// account, and wrong password are indistinguishable to the caller; the
// audit log keeps the distinction. When the administrator has a second
// factor enrolled the result carries RequiresTwoFactor and no tokens.
func (e *Engine) Login(ctx context.Context, email, plainPassword string, meta ClientMeta) (*LoginResult, error) {
	email = normalizeEmail(email)

	admin, err := e.creds.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			// Burn the same argon2 work a real mismatch would, so the
			// miss path is not observably faster.
			_, _ = e.passwords.Verify(plainPassword, e.decoyHash)
			return nil, e.failLogin(ctx, "", email, meta, "unknown_email")
		}
		return nil, storeErr(err)
	}

	ok, err := e.passwords.Verify(plainPassword, admin.PasswordHash)
	if err != nil || !ok {
		return nil, e.failLogin(ctx, admin.ID, email, meta, "password_mismatch")
	}
	if !admin.Active {
		return nil, e.failLogin(ctx, admin.ID, email, meta, "inactive")
	}

	e.maybeUpgradeHash(ctx, admin, plainPassword)

	if admin.TwoFactorEnabled {
		e.metricInc(MetricLogin2FARequired)
		e.emitAudit(ctx, auditLogin2FARequired, true, admin.ID, admin.Email, meta, "", nil)
		return &LoginResult{RequiresTwoFactor: true, Admin: identityFor(admin)}, nil
	}

	pair, err := e.issueTokens(ctx, admin, meta)
	if err != nil {
		return nil, err
	}
	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditLoginSuccess, true, admin.ID, admin.Email, meta, "", nil)
	return loginResultFor(admin, pair), nil
}

func (e *Engine) failLogin(ctx context.Context, adminID, email string, meta ClientMeta, reason string) error {
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditLoginFailed, false, adminID, email, meta, reason, nil)
	return ErrInvalidCredentials
}

// maybeUpgradeHash re-hashes the password when the stored hash was
// minted under older cost parameters. Best effort: any failure leaves
// the old hash in place and the login still succeeds.
func (e *Engine) maybeUpgradeHash(ctx context.Context, admin *Administrator, plainPassword string) {
	stale, err := e.passwords.NeedsRehash(admin.PasswordHash)
	if err != nil || !stale {
		return
	}
	rehashed, err := e.passwords.Hash(plainPassword)
	if err != nil {
		return
	}
	if err := e.creds.Update(ctx, admin.ID, AdminUpdate{PasswordHash: &rehashed}); err == nil {
		admin.PasswordHash = rehashed
	}
}

// VerifyTwoFactor is the second authentication step. The caller holds
// an admin ID that already passed the password check, so a missing or
// inactive account reports ErrInvalidAdmin instead of collapsing with a
// wrong code. A valid TOTP code or an unused backup code both pass;
// backup codes are consumed before any token is issued against them.
func (e *Engine) VerifyTwoFactor(ctx context.Context, adminID, code string, meta ClientMeta) (*LoginResult, error) {
	admin, err := e.creds.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			e.emitAudit(ctx, auditTwoFactorFailed, false, adminID, "", meta, "unknown_admin", nil)
			return nil, ErrInvalidAdmin
		}
		return nil, storeErr(err)
	}
	if !admin.Active {
		e.emitAudit(ctx, auditTwoFactorFailed, false, admin.ID, admin.Email, meta, "inactive", nil)
		return nil, ErrInvalidAdmin
	}
	if !admin.TwoFactorEnabled {
		return nil, ErrTwoFactorNotEnabled
	}

	secret, err := e.cipher.Decrypt(admin.TwoFactorSecret)
	if err != nil {
		return nil, storeErr(err)
	}

	method := "totp"
	if !e.totp.VerifyCode(secret, code, e.now()) {
		idx := totp.MatchBackupCode(admin.ID, code, admin.BackupCodeHashes)
		if idx < 0 {
			e.metricInc(MetricTwoFactorFailure)
			e.emitAudit(ctx, auditTwoFactorFailed, false, admin.ID, admin.Email, meta, "code_mismatch", nil)
			return nil, ErrInvalidTwoFactorCode
		}
		// Burn the code before any token exists that it paid for.
		remaining := totp.RemoveBackupCode(admin.BackupCodeHashes, idx)
		if err := e.creds.Update(ctx, admin.ID, AdminUpdate{BackupCodeHashes: &remaining}); err != nil {
			return nil, storeErr(err)
		}
		admin.BackupCodeHashes = remaining
		e.metricInc(MetricBackupCodeUsed)
		method = "backup_code"
	}

	pair, err := e.issueTokens(ctx, admin, meta)
	if err != nil {
		return nil, err
	}
	e.metricInc(MetricTwoFactorSuccess)
	e.emitAudit(ctx, auditTwoFactorSuccess, true, admin.ID, admin.Email, meta, "", map[string]string{"method": method})
	return loginResultFor(admin, pair), nil
}

func loginResultFor(admin *Administrator, pair *TokenPair) *LoginResult {
	return &LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
		Admin:        identityFor(admin),
	}
}
