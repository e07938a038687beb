package adminauth

import (
	"context"
	"fmt"

	"github.com/norventa/adminauth/totp"
)

// SetupTwoFactor starts an enrollment: it generates a fresh TOTP
// secret, stores it encrypted with the enabled flag still off, and
// returns the only chance to read the secret in plaintext. Calling it
// again before EnableTwoFactor replaces the pending secret.
func (e *Engine) SetupTwoFactor(ctx context.Context, adminID string) (*TwoFactorSetup, error) {
	admin, err := e.findAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin.TwoFactorEnabled {
		return nil, ErrTwoFactorAlreadyEnabled
	}

	secret, err := e.totp.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("generate totp secret: %w", err)
	}
	sealed, err := e.cipher.Encrypt(secret)
	if err != nil {
		return nil, fmt.Errorf("encrypt totp secret: %w", err)
	}
	if err := e.creds.Update(ctx, admin.ID, AdminUpdate{TwoFactorSecret: &sealed}); err != nil {
		return nil, storeErr(err)
	}

	return &TwoFactorSetup{
		Secret:          totp.EncodeSecret(secret),
		ProvisioningURI: e.totp.ProvisionURI(admin.Email, secret),
	}, nil
}

// EnableTwoFactor confirms a pending enrollment with a live code and
// turns the second factor on. The returned backup codes are shown
// exactly once; only their hashes persist.
func (e *Engine) EnableTwoFactor(ctx context.Context, adminID, code string) ([]string, error) {
	admin, err := e.findAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin.TwoFactorEnabled {
		return nil, ErrTwoFactorAlreadyEnabled
	}
	if len(admin.TwoFactorSecret) == 0 {
		return nil, ErrTwoFactorNotEnabled
	}

	secret, err := e.cipher.Decrypt(admin.TwoFactorSecret)
	if err != nil {
		return nil, storeErr(err)
	}
	if !e.totp.VerifyCode(secret, code, e.now()) {
		e.metricInc(MetricTwoFactorFailure)
		e.emitAudit(ctx, auditTwoFactorFailed, false, admin.ID, admin.Email, ClientMeta{}, "enable_code_mismatch", nil)
		return nil, ErrInvalidTwoFactorCode
	}

	codes, err := totp.GenerateBackupCodes(e.cfg.TOTP.BackupCodeCount)
	if err != nil {
		return nil, fmt.Errorf("generate backup codes: %w", err)
	}
	hashes := make([]string, len(codes))
	for i, c := range codes {
		hashes[i] = totp.HashBackupCode(admin.ID, c)
	}

	enabled := true
	if err := e.creds.Update(ctx, admin.ID, AdminUpdate{
		TwoFactorEnabled: &enabled,
		BackupCodeHashes: &hashes,
	}); err != nil {
		return nil, storeErr(err)
	}

	e.metricInc(MetricTwoFactorEnabled)
	e.emitAudit(ctx, auditTwoFactorEnabled, true, admin.ID, admin.Email, ClientMeta{}, "", nil)
	return codes, nil
}

// DisableTwoFactor turns the second factor off after re-authenticating
// with a current TOTP code or an unused backup code. Secret, backup
// codes, and flag are all cleared; sessions stay untouched.
func (e *Engine) DisableTwoFactor(ctx context.Context, adminID, code string) error {
	admin, err := e.findAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if !admin.TwoFactorEnabled {
		return ErrTwoFactorNotEnabled
	}

	secret, err := e.cipher.Decrypt(admin.TwoFactorSecret)
	if err != nil {
		return storeErr(err)
	}
	ok := e.totp.VerifyCode(secret, code, e.now())
	if !ok {
		// No need to burn a matched backup code: the whole set is
		// cleared below.
		ok = totp.MatchBackupCode(admin.ID, code, admin.BackupCodeHashes) >= 0
	}
	if !ok {
		e.metricInc(MetricTwoFactorFailure)
		e.emitAudit(ctx, auditTwoFactorFailed, false, admin.ID, admin.Email, ClientMeta{}, "disable_code_mismatch", nil)
		return ErrInvalidTwoFactorCode
	}

	disabled := false
	var noSecret []byte
	var noCodes []string
	if err := e.creds.Update(ctx, admin.ID, AdminUpdate{
		TwoFactorEnabled: &disabled,
		TwoFactorSecret:  &noSecret,
		BackupCodeHashes: &noCodes,
	}); err != nil {
		return storeErr(err)
	}

	e.metricInc(MetricTwoFactorDisabled)
	e.emitAudit(ctx, auditTwoFactorDisabled, true, admin.ID, admin.Email, ClientMeta{}, "", nil)
	return nil
}

// BackupCodesRemaining reports how many unused backup codes the
// administrator still holds.
func (e *Engine) BackupCodesRemaining(ctx context.Context, adminID string) (int, error) {
	admin, err := e.findAdmin(ctx, adminID)
	if err != nil {
		return 0, err
	}
	return len(admin.BackupCodeHashes), nil
}
