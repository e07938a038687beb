package adminauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/norventa/adminauth/session"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "test config valid",
			mutate:    func(c *Config) {},
			wantValid: true,
		},
		{
			name: "jwt key too short",
			mutate: func(c *Config) {
				c.JWT.Key = []byte("short")
			},
			wantValid: false,
		},
		{
			name: "refresh pepper too short",
			mutate: func(c *Config) {
				c.Refresh.Pepper = []byte("abc")
			},
			wantValid: false,
		},
		{
			name: "cipher key wrong size",
			mutate: func(c *Config) {
				c.TOTP.SecretCipherKey = []byte("0123456789abcdef")
			},
			wantValid: false,
		},
		{
			name: "backup code count over cap",
			mutate: func(c *Config) {
				c.TOTP.BackupCodeCount = 25
			},
			wantValid: false,
		},
		{
			name: "audit enabled without buffer",
			mutate: func(c *Config) {
				c.Audit.BufferSize = -1
			},
			wantValid: false,
		},
		{
			name: "audit disabled ignores buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = false
				c.Audit.BufferSize = -1
			},
			wantValid: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig().normalized()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("Validate() = nil, want error")
			}
		})
	}
}

func TestNormalizedAppliesDefaults(t *testing.T) {
	var cfg Config
	got := cfg.normalized()

	if got.JWT.AccessTTL != 24*time.Hour {
		t.Fatalf("AccessTTL = %v, want 24h", got.JWT.AccessTTL)
	}
	if got.JWT.Issuer != "adminauth" || got.JWT.Audience != "admin-app" {
		t.Fatalf("issuer/audience = %q/%q", got.JWT.Issuer, got.JWT.Audience)
	}
	if got.Refresh.TTL != 7*24*time.Hour {
		t.Fatalf("Refresh.TTL = %v, want 168h", got.Refresh.TTL)
	}
	if got.TOTP.Digits != 6 || got.TOTP.Period != 30 || got.TOTP.Skew != 1 {
		t.Fatalf("TOTP defaults = %+v", got.TOTP)
	}
	if got.TOTP.BackupCodeCount != 10 {
		t.Fatalf("BackupCodeCount = %d, want 10", got.TOTP.BackupCodeCount)
	}
	if got.Audit.BufferSize != 256 {
		t.Fatalf("Audit.BufferSize = %d, want 256", got.Audit.BufferSize)
	}
}

func TestNormalizedTOTPIssuerFallsBackToJWTIssuer(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.Issuer = "acme-admin"
	cfg.TOTP.Issuer = ""

	if got := cfg.normalized().TOTP.Issuer; got != "acme-admin" {
		t.Fatalf("TOTP issuer = %q, want the JWT issuer", got)
	}
}

func TestNormalizedClonesKeyMaterial(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	cfg := testConfig()
	cfg.JWT.Key = key

	got := cfg.normalized()
	key[0] = 'X'
	if got.JWT.Key[0] == 'X' {
		t.Fatal("normalized config aliases the caller's key slice")
	}
}

func TestBuilderRequiresStores(t *testing.T) {
	if _, err := New().WithConfig(testConfig()).Build(); !errors.Is(err, ErrMissingCredentialStore) {
		t.Fatalf("err = %v, want ErrMissingCredentialStore", err)
	}

	_, err := New().
		WithConfig(testConfig()).
		WithCredentialStore(NewMemoryCredentialStore()).
		Build()
	if !errors.Is(err, ErrMissingSessionStore) {
		t.Fatalf("err = %v, want ErrMissingSessionStore", err)
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New().
		WithConfig(testConfig()).
		WithCredentialStore(NewMemoryCredentialStore()).
		WithSessionStore(session.NewMemoryStore())

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := b.Build(); err == nil {
		t.Fatal("second Build should fail")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("ADMINAUTH_JWT_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("ADMINAUTH_JWT_ISSUER", "acme-admin")
	t.Setenv("ADMINAUTH_ACCESS_TTL", "45m")
	t.Setenv("ADMINAUTH_REFRESH_PEPPER", "fedcba9876543210")
	t.Setenv("ADMINAUTH_TOTP_CIPHER_KEY", "abcdefghijklmnopqrstuvwxyz012345")
	t.Setenv("ADMINAUTH_BACKUP_CODES", "8")
	t.Setenv("ADMINAUTH_AUDIT_ENABLED", "false")

	cfg, err := LoadConfigFromEnv(context.Background())
	if err != nil {
		t.Fatalf("LoadConfigFromEnv failed: %v", err)
	}

	if string(cfg.JWT.Key) != "0123456789abcdef0123456789abcdef" {
		t.Fatalf("JWT key = %q", cfg.JWT.Key)
	}
	if cfg.JWT.Issuer != "acme-admin" {
		t.Fatalf("issuer = %q, want acme-admin", cfg.JWT.Issuer)
	}
	if cfg.JWT.AccessTTL != 45*time.Minute {
		t.Fatalf("AccessTTL = %v, want 45m", cfg.JWT.AccessTTL)
	}
	if cfg.JWT.Audience != "admin-app" {
		t.Fatalf("audience default = %q, want admin-app", cfg.JWT.Audience)
	}
	if cfg.TOTP.BackupCodeCount != 8 {
		t.Fatalf("backup codes = %d, want 8", cfg.TOTP.BackupCodeCount)
	}
	if cfg.Audit.Enabled {
		t.Fatal("audit should be disabled")
	}

	// The loaded config builds a working engine.
	engine, err := New().
		WithConfig(cfg).
		WithCredentialStore(NewMemoryCredentialStore()).
		WithSessionStore(session.NewMemoryStore()).
		Build()
	if err != nil {
		t.Fatalf("Build from env config failed: %v", err)
	}
	engine.Close()
}
