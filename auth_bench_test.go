package adminauth

import (
	"context"
	"testing"

	"github.com/norventa/adminauth/permission"
	"github.com/norventa/adminauth/session"
)

func newBenchmarkEngine(b *testing.B) (*Engine, *LoginResult) {
	b.Helper()

	creds := NewMemoryCredentialStore()
	engine, err := New().
		WithConfig(testConfig()).
		WithCredentialStore(creds).
		WithSessionStore(session.NewMemoryStore()).
		Build()
	if err != nil {
		b.Fatalf("Build failed: %v", err)
	}
	b.Cleanup(engine.Close)

	hash, err := engine.passwords.Hash("correct-password-123")
	if err != nil {
		b.Fatalf("hash failed: %v", err)
	}
	admin := &Administrator{Email: "dana@example.com", Role: permission.RoleEditor, Active: true, PasswordHash: hash}
	if err := creds.Create(context.Background(), admin); err != nil {
		b.Fatalf("seed failed: %v", err)
	}

	res, err := engine.Login(context.Background(), "dana@example.com", "correct-password-123", ClientMeta{})
	if err != nil {
		b.Fatalf("login failed: %v", err)
	}
	return engine, res
}

func BenchmarkVerifyAccessToken(b *testing.B) {
	engine, res := newBenchmarkEngine(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.VerifyAccessToken(res.AccessToken); err != nil {
			b.Fatalf("verify failed: %v", err)
		}
	}
}

func BenchmarkAuthorize(b *testing.B) {
	engine, _ := newBenchmarkEngine(b)
	id := &Identity{ID: "adm_1", Role: permission.RoleEditor}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := engine.Authorize(id, permission.ResourceProduct, permission.ActionUpdate); err != nil {
			b.Fatalf("authorize failed: %v", err)
		}
	}
}

func BenchmarkRefresh(b *testing.B) {
	engine, res := newBenchmarkEngine(b)
	refresh := res.RefreshToken

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pair, err := engine.Refresh(context.Background(), refresh, ClientMeta{})
		if err != nil {
			b.Fatalf("refresh failed: %v", err)
		}
		refresh = pair.RefreshToken
	}
}

func BenchmarkLogin(b *testing.B) {
	engine, _ := newBenchmarkEngine(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err := engine.Login(context.Background(), "dana@example.com", "correct-password-123", ClientMeta{})
		if err != nil {
			b.Fatalf("login failed: %v", err)
		}
		_ = engine.Logout(context.Background(), res.RefreshToken)
	}
}
