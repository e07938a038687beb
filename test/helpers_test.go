//go:build integration
// +build integration

package test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/norventa/adminauth"
	"github.com/norventa/adminauth/password"
	"github.com/norventa/adminauth/permission"
	"github.com/norventa/adminauth/session"
)

const integrationPassword = "integration-password-1"

func integrationConfig() adminauth.Config {
	return adminauth.Config{
		JWT: adminauth.JWTConfig{
			Key: []byte("0123456789abcdef0123456789abcdef"),
		},
		Refresh: adminauth.RefreshConfig{
			Pepper: []byte("fedcba9876543210"),
		},
		TOTP: adminauth.TOTPConfig{
			SecretCipherKey: []byte("abcdefghijklmnopqrstuvwxyz012345"),
		},
		// Minimum argon2 cost so the suite stays fast.
		Password: password.Config{
			Memory:      8 * 1024,
			Time:        1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   16,
		},
	}
}

func newIntegrationRedis(t *testing.T) redis.UniversalClient {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return rdb
}

func newIntegrationStore(t *testing.T) *session.RedisStore {
	t.Helper()
	return session.NewRedisStore(newIntegrationRedis(t), "adminauth")
}

// activeOwners satisfies the rotator's owner re-check with an
// always-active administrator, so store behavior can be tested without
// a credential backend.
type activeOwners struct{}

func (activeOwners) FindOwner(_ context.Context, adminID string) (session.Owner, error) {
	return session.Owner{
		ID:     adminID,
		Email:  adminID + "@example.com",
		Role:   "editor",
		Active: true,
	}, nil
}

func newIntegrationRotator(t *testing.T) (*session.Rotator, *session.RedisStore) {
	t.Helper()

	store := newIntegrationStore(t)
	rotator, err := session.NewRotator(store, activeOwners{}, session.Config{
		Pepper: []byte("fedcba9876543210"),
	})
	if err != nil {
		t.Fatalf("new rotator: %v", err)
	}
	return rotator, store
}

// newIntegrationEngine builds a full engine with Redis-backed sessions
// and in-memory credentials.
func newIntegrationEngine(t *testing.T) (*adminauth.Engine, *adminauth.MemoryCredentialStore) {
	t.Helper()

	creds := adminauth.NewMemoryCredentialStore()
	engine, err := adminauth.New().
		WithConfig(integrationConfig()).
		WithCredentialStore(creds).
		WithSessionStore(newIntegrationStore(t)).
		Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, creds
}

func makeRefreshSession(id, adminID, tokenHash string) *session.RefreshSession {
	now := time.Now()
	return &session.RefreshSession{
		ID:        id,
		AdminID:   adminID,
		TokenHash: tokenHash,
		IP:        "127.0.0.1",
		UserAgent: "integration-test",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
}

func seedAdmin(t *testing.T, creds *adminauth.MemoryCredentialStore, email string, role permission.Role) *adminauth.Administrator {
	t.Helper()

	verifier, err := password.New(integrationConfig().Password)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	hash, err := verifier.Hash(integrationPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	admin := &adminauth.Administrator{
		Email:        email,
		DisplayName:  "Integration Admin",
		Role:         role,
		Active:       true,
		PasswordHash: hash,
	}
	if err := creds.Create(context.Background(), admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return admin
}
