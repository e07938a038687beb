//go:build integration
// +build integration

package test

import (
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"

	"github.com/norventa/adminauth/jwt"
)

func TestJWTIntegrationHardeningChecks(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")

	manager, err := jwt.NewManager(jwt.Config{
		Key:       key,
		AccessTTL: time.Minute,
		Issuer:    "adminauth",
		Audience:  "admin-app",
		Leeway:    30 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	access, _, err := manager.CreateAccess("adm_1", "alice@example.com", "editor")
	if err != nil {
		t.Fatalf("CreateAccess failed: %v", err)
	}
	claims, err := manager.ParseAccess(access)
	if err != nil {
		t.Fatalf("ParseAccess valid token failed: %v", err)
	}
	if claims.Subject != "adm_1" || claims.Role != "editor" {
		t.Fatalf("claims subject=%q role=%q, want adm_1/editor", claims.Subject, claims.Role)
	}

	// Same claims under a foreign signing key must not verify.
	forged := signedWith(t, gjwt.SigningMethodHS256, []byte("another-32-byte-signing-key-zzzz"), validClaims())
	if _, err := manager.ParseAccess(forged); !errors.Is(err, jwt.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for foreign signature, got %v", err)
	}

	// alg=none must never verify.
	unsigned := signedWith(t, gjwt.SigningMethodNone, gjwt.UnsafeAllowNoneSignatureType, validClaims())
	if _, err := manager.ParseAccess(unsigned); !errors.Is(err, jwt.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for alg=none, got %v", err)
	}

	// Correct key, wrong audience.
	wrongAud := validClaims()
	wrongAud.Audience = gjwt.ClaimStrings{"another-app"}
	if _, err := manager.ParseAccess(signedWith(t, gjwt.SigningMethodHS256, key, wrongAud)); !errors.Is(err, jwt.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for audience mismatch, got %v", err)
	}

	// Correct key, wrong issuer.
	wrongIss := validClaims()
	wrongIss.Issuer = "someone-else"
	if _, err := manager.ParseAccess(signedWith(t, gjwt.SigningMethodHS256, key, wrongIss)); !errors.Is(err, jwt.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for issuer mismatch, got %v", err)
	}

	// Expired well past the leeway window.
	expired := validClaims()
	expired.IssuedAt = gjwt.NewNumericDate(time.Now().Add(-2 * time.Hour))
	expired.ExpiresAt = gjwt.NewNumericDate(time.Now().Add(-time.Hour))
	if _, err := manager.ParseAccess(signedWith(t, gjwt.SigningMethodHS256, key, expired)); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func validClaims() jwt.AccessClaims {
	now := time.Now()
	return jwt.AccessClaims{
		Email: "alice@example.com",
		Role:  "editor",
		RegisteredClaims: gjwt.RegisteredClaims{
			Subject:   "adm_1",
			Issuer:    "adminauth",
			Audience:  gjwt.ClaimStrings{"admin-app"},
			IssuedAt:  gjwt.NewNumericDate(now),
			ExpiresAt: gjwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
}

func signedWith(t *testing.T, method gjwt.SigningMethod, key any, claims jwt.AccessClaims) string {
	t.Helper()
	signed, err := gjwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}
