package adminauth

import (
	"context"
	"testing"
	"time"

	"github.com/norventa/adminauth/password"
	"github.com/norventa/adminauth/permission"
	"github.com/norventa/adminauth/session"
	"github.com/norventa/adminauth/totp"
)

func testConfig() Config {
	cfg := defaultConfig()
	cfg.JWT.Key = []byte("0123456789abcdef0123456789abcdef")
	cfg.JWT.AccessTTL = time.Hour
	cfg.Refresh.Pepper = []byte("fedcba9876543210")
	cfg.Refresh.TTL = 24 * time.Hour
	cfg.TOTP.SecretCipherKey = []byte("abcdefghijklmnopqrstuvwxyz012345")
	// Minimum argon2 cost so the suite stays fast.
	cfg.Password = password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}
	cfg.Audit.BufferSize = 64
	return cfg
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *MemoryCredentialStore) {
	t.Helper()

	creds := NewMemoryCredentialStore()
	engine, err := New().
		WithConfig(cfg).
		WithCredentialStore(creds).
		WithSessionStore(session.NewMemoryStore()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, creds
}

func seedAdmin(t *testing.T, e *Engine, creds *MemoryCredentialStore, email, plain string, role permission.Role, active bool) *Administrator {
	t.Helper()

	hash, err := e.passwords.Hash(plain)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	admin := &Administrator{
		Email:        email,
		DisplayName:  "Test Admin",
		Role:         role,
		Active:       active,
		PasswordHash: hash,
	}
	if err := creds.Create(context.Background(), admin); err != nil {
		t.Fatalf("seed admin failed: %v", err)
	}
	return admin
}

// enrollTwoFactor walks the full setup+enable handshake and returns the
// decoded secret plus the plaintext backup codes.
func enrollTwoFactor(t *testing.T, e *Engine, adminID string) ([]byte, []string) {
	t.Helper()

	setup, err := e.SetupTwoFactor(context.Background(), adminID)
	if err != nil {
		t.Fatalf("SetupTwoFactor failed: %v", err)
	}
	secret, err := totp.DecodeSecret(setup.Secret)
	if err != nil {
		t.Fatalf("decode secret failed: %v", err)
	}
	codes, err := e.EnableTwoFactor(context.Background(), adminID, e.totp.CodeAt(secret, e.now()))
	if err != nil {
		t.Fatalf("EnableTwoFactor failed: %v", err)
	}
	return secret, codes
}

// failingCredStore reports the same backend failure from every method.
type failingCredStore struct {
	err error
}

func (s failingCredStore) Create(ctx context.Context, admin *Administrator) error {
	return s.err
}

func (s failingCredStore) FindByID(ctx context.Context, id string) (*Administrator, error) {
	return nil, s.err
}

func (s failingCredStore) FindByEmail(ctx context.Context, email string) (*Administrator, error) {
	return nil, s.err
}

func (s failingCredStore) Update(ctx context.Context, id string, upd AdminUpdate) error {
	return s.err
}
