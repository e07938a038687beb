package adminauth

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/norventa/adminauth/permission"
	"github.com/norventa/adminauth/totp"
)

func TestSetupTwoFactorReturnsProvisioning(t *testing.T) {
	engine, creds := newTestEngine(t, testConfig())
	admin := seedAdmin(t, engine, creds, "dana@example.com", "correct-password-123", permission.RoleAdministrator, true)

	setup, err := engine.SetupTwoFactor(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("SetupTwoFactor failed: %v", err)
	}
	if setup.Secret == "" {
		t.Fatal("expected a base32 secret")
	}
	if !strings.HasPrefix(setup.ProvisioningURI, "otpauth://totp/") {
		t.Fatalf("unexpected provisioning URI %q", setup.ProvisioningURI)
	}
	if !strings.Contains(setup.ProvisioningURI, "dana%40example.com") &&
		!strings.Contains(setup.ProvisioningURI, "dana@example.com") {
		t.Fatalf("URI %q does not name the account", setup.ProvisioningURI)
	}

	stored, err := creds.FindByID(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if stored.TwoFactorEnabled {
		t.Fatal("setup must not enable the second factor")
	}
	if len(stored.TwoFactorSecret) == 0 {
		t.Fatal("expected an encrypted pending secret")
	}

	plain, err := totp.DecodeSecret(setup.Secret)
	if err != nil {
		t.Fatalf("decode secret failed: %v", err)
	}
	if bytes.Contains(stored.TwoFactorSecret, plain) {
		t.Fatal("secret stored in plaintext")
	}
}

func TestSetupTwoFactorOverwritesPendingSecret(t *testing.T) {
	engine, creds := newTestEngine(t, testConfig())
	admin := seedAdmin(t, engine, creds, "dana@example.com", "correct-password-123", permission.RoleAdministrator, true)

	ctx := context.Background()
	first, err := engine.SetupTwoFactor(ctx, admin.ID)
	if err != nil {
		t.Fatalf("first SetupTwoFactor failed: %v", err)
	}
	second, err := engine.SetupTwoFactor(ctx, admin.ID)
	if err != nil {
		t.Fatalf("second SetupTwoFactor failed: %v", err)
	}
	if first.Secret == second.Secret {
		t.Fatal("re-setup must mint a fresh secret")
	}

	oldSecret, _ := totp.DecodeSecret(first.Secret)
	newSecret, _ := totp.DecodeSecret(second.Secret)

	if _, err := engine.EnableTwoFactor(ctx, admin.ID, engine.totp.CodeAt(oldSecret, time.Now())); !errors.Is(err, ErrInvalidTwoFactorCode) {
		t.Fatalf("stale secret err = %v, want ErrInvalidTwoFactorCode", err)
	}
	if _, err := engine.EnableTwoFactor(ctx, admin.ID, engine.totp.CodeAt(newSecret, time.Now())); err != nil {
		t.Fatalf("enable with current secret failed: %v", err)
	}
}

func TestSetupTwoFactorGuards(t *testing.T) {
	engine, creds := newTestEngine(t, testConfig())
	admin := seedAdmin(t, engine, creds, "dana@example.com", "correct-password-123", permission.RoleAdministrator, true)
	enrollTwoFactor(t, engine, admin.ID)

	if _, err := engine.SetupTwoFactor(context.Background(), admin.ID); !errors.Is(err, ErrTwoFactorAlreadyEnabled) {
		t.Fatalf("enrolled admin err = %v, want ErrTwoFactorAlreadyEnabled", err)
	}
	if _, err := engine.SetupTwoFactor(context.Background(), "adm_missing"); !errors.Is(err, ErrInvalidAdmin) {
		t.Fatalf("unknown admin err = %v, want ErrInvalidAdmin", err)
	}
}

func TestEnableTwoFactorWithoutSetup(t *testing.T) {
	engine, creds := newTestEngine(t, testConfig())
	admin := seedAdmin(t, engine, creds, "dana@example.com", "correct-password-123", permission.RoleEditor, true)

	_, err := engine.EnableTwoFactor(context.Background(), admin.ID, "123456")
	if !errors.Is(err, ErrTwoFactorNotEnabled) {
		t.Fatalf("err = %v, want ErrTwoFactorNotEnabled", err)
	}
}

func TestEnableTwoFactorWrongCodeKeepsDisabled(t *testing.T) {
	engine, creds := newTestEngine(t, testConfig())
	admin := seedAdmin(t, engine, creds, "dana@example.com", "correct-password-123", permission.RoleEditor, true)

	if _, err := engine.SetupTwoFactor(context.Background(), admin.ID); err != nil {
		t.Fatalf("SetupTwoFactor failed: %v", err)
	}
	if _, err := engine.EnableTwoFactor(context.Background(), admin.ID, "000000"); !errors.Is(err, ErrInvalidTwoFactorCode) {
		t.Fatalf("err = %v, want ErrInvalidTwoFactorCode", err)
	}

	stored, err := creds.FindByID(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if stored.TwoFactorEnabled || len(stored.BackupCodeHashes) != 0 {
		t.Fatalf("failed enable must not flip state: enabled=%v codes=%d", stored.TwoFactorEnabled, len(stored.BackupCodeHashes))
	}
}

func TestEnableTwoFactorIssuesBackupCodes(t *testing.T) {
	cfg := testConfig()
	engine, creds := newTestEngine(t, cfg)
	admin := seedAdmin(t, engine, creds, "dana@example.com", "correct-password-123", permission.RoleEditor, true)

	_, codes := enrollTwoFactor(t, engine, admin.ID)
	if len(codes) != cfg.TOTP.BackupCodeCount {
		t.Fatalf("got %d backup codes, want %d", len(codes), cfg.TOTP.BackupCodeCount)
	}
	for _, code := range codes {
		if len(code) != 11 || code[5] != '-' {
			t.Fatalf("backup code %q not in XXXXX-XXXXX form", code)
		}
	}

	stored, err := creds.FindByID(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if !stored.TwoFactorEnabled {
		t.Fatal("expected the second factor enabled")
	}
	if len(stored.BackupCodeHashes) != len(codes) {
		t.Fatalf("stored %d hashes, want %d", len(stored.BackupCodeHashes), len(codes))
	}
	for i, code := range codes {
		for _, h := range stored.BackupCodeHashes {
			if h == code {
				t.Fatalf("backup code %d stored in plaintext", i)
			}
		}
	}
}

func TestDisableTwoFactorWithTOTPCode(t *testing.T) {
	engine, creds := newTestEngine(t, testConfig())
	admin := seedAdmin(t, engine, creds, "dana@example.com", "correct-password-123", permission.RoleEditor, true)
	secret, _ := enrollTwoFactor(t, engine, admin.ID)

	if err := engine.DisableTwoFactor(context.Background(), admin.ID, engine.totp.CodeAt(secret, time.Now())); err != nil {
		t.Fatalf("DisableTwoFactor failed: %v", err)
	}

	stored, err := creds.FindByID(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if stored.TwoFactorEnabled || len(stored.TwoFactorSecret) != 0 || len(stored.BackupCodeHashes) != 0 {
		t.Fatalf("disable left residue: %+v", stored)
	}

	// Login goes straight to tokens again.
	res := loginPair(t, engine, "dana@example.com", "correct-password-123")
	if res.RequiresTwoFactor {
		t.Fatal("disabled second factor still challenges")
	}
}

func TestDisableTwoFactorWithBackupCode(t *testing.T) {
	engine, creds := newTestEngine(t, testConfig())
	admin := seedAdmin(t, engine, creds, "dana@example.com", "correct-password-123", permission.RoleEditor, true)
	_, codes := enrollTwoFactor(t, engine, admin.ID)

	if err := engine.DisableTwoFactor(context.Background(), admin.ID, codes[3]); err != nil {
		t.Fatalf("DisableTwoFactor with backup code failed: %v", err)
	}
}

func TestDisableTwoFactorGuards(t *testing.T) {
	engine, creds := newTestEngine(t, testConfig())
	admin := seedAdmin(t, engine, creds, "dana@example.com", "correct-password-123", permission.RoleEditor, true)

	if err := engine.DisableTwoFactor(context.Background(), admin.ID, "123456"); !errors.Is(err, ErrTwoFactorNotEnabled) {
		t.Fatalf("not enrolled err = %v, want ErrTwoFactorNotEnabled", err)
	}

	enrollTwoFactor(t, engine, admin.ID)
	if err := engine.DisableTwoFactor(context.Background(), admin.ID, "000000"); !errors.Is(err, ErrInvalidTwoFactorCode) {
		t.Fatalf("wrong code err = %v, want ErrInvalidTwoFactorCode", err)
	}

	stored, err := creds.FindByID(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if !stored.TwoFactorEnabled {
		t.Fatal("failed disable must not flip the flag")
	}
}

func TestBackupCodeIsSingleUse(t *testing.T) {
	cfg := testConfig()
	engine, creds := newTestEngine(t, cfg)
	admin := seedAdmin(t, engine, creds, "dana@example.com", "correct-password-123", permission.RoleEditor, true)
	_, codes := enrollTwoFactor(t, engine, admin.ID)

	ctx := context.Background()
	before, err := engine.BackupCodesRemaining(ctx, admin.ID)
	if err != nil {
		t.Fatalf("BackupCodesRemaining failed: %v", err)
	}
	if before != cfg.TOTP.BackupCodeCount {
		t.Fatalf("remaining = %d, want %d", before, cfg.TOTP.BackupCodeCount)
	}

	res, err := engine.VerifyTwoFactor(ctx, admin.ID, codes[0], ClientMeta{})
	if err != nil {
		t.Fatalf("VerifyTwoFactor with backup code failed: %v", err)
	}
	if res.AccessToken == "" {
		t.Fatal("expected tokens from a backup-code login")
	}

	after, err := engine.BackupCodesRemaining(ctx, admin.ID)
	if err != nil {
		t.Fatalf("BackupCodesRemaining failed: %v", err)
	}
	if after != before-1 {
		t.Fatalf("remaining = %d, want %d", after, before-1)
	}

	if _, err := engine.VerifyTwoFactor(ctx, admin.ID, codes[0], ClientMeta{}); !errors.Is(err, ErrInvalidTwoFactorCode) {
		t.Fatalf("reused backup code err = %v, want ErrInvalidTwoFactorCode", err)
	}
	if got := engine.metrics.Value(MetricBackupCodeUsed); got != 1 {
		t.Fatalf("backup code counter = %d, want 1", got)
	}
}

func TestBackupCodesExhaust(t *testing.T) {
	cfg := testConfig()
	engine, creds := newTestEngine(t, cfg)
	admin := seedAdmin(t, engine, creds, "dana@example.com", "correct-password-123", permission.RoleEditor, true)
	_, codes := enrollTwoFactor(t, engine, admin.ID)

	ctx := context.Background()
	for i, code := range codes {
		if _, err := engine.VerifyTwoFactor(ctx, admin.ID, code, ClientMeta{}); err != nil {
			t.Fatalf("VerifyTwoFactor with backup code %d failed: %v", i, err)
		}
		remaining, err := engine.BackupCodesRemaining(ctx, admin.ID)
		if err != nil {
			t.Fatalf("BackupCodesRemaining failed: %v", err)
		}
		if want := len(codes) - i - 1; remaining != want {
			t.Fatalf("after %d uses remaining = %d, want %d", i+1, remaining, want)
		}
	}

	// Well-formed but never issued: the exhausted set rejects it.
	if _, err := engine.VerifyTwoFactor(ctx, admin.ID, "ABCDE-FGHJK", ClientMeta{}); !errors.Is(err, ErrInvalidTwoFactorCode) {
		t.Fatalf("unissued code err = %v, want ErrInvalidTwoFactorCode", err)
	}
	if got := engine.metrics.Value(MetricBackupCodeUsed); got != uint64(len(codes)) {
		t.Fatalf("backup code counter = %d, want %d", got, len(codes))
	}
}

func TestBackupCodeAcceptsSloppyInput(t *testing.T) {
	engine, creds := newTestEngine(t, testConfig())
	admin := seedAdmin(t, engine, creds, "dana@example.com", "correct-password-123", permission.RoleEditor, true)
	_, codes := enrollTwoFactor(t, engine, admin.ID)

	// Lowercase without the dash still matches.
	sloppy := strings.ToLower(strings.ReplaceAll(codes[1], "-", ""))
	if _, err := engine.VerifyTwoFactor(context.Background(), admin.ID, sloppy, ClientMeta{}); err != nil {
		t.Fatalf("canonicalized backup code rejected: %v", err)
	}
}

func TestBackupCodesRemainingUnknownAdmin(t *testing.T) {
	engine, _ := newTestEngine(t, testConfig())

	_, err := engine.BackupCodesRemaining(context.Background(), "adm_missing")
	if !errors.Is(err, ErrInvalidAdmin) {
		t.Fatalf("err = %v, want ErrInvalidAdmin", err)
	}
}
