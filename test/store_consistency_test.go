//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"testing"

	"github.com/norventa/adminauth/session"
)

// TestStoreConsistencyRevokedStaysVisible checks the retention property
// replay detection rests on: a revoked session still resolves by token
// hash instead of degrading to not-found.
func TestStoreConsistencyRevokedStaysVisible(t *testing.T) {
	ctx := context.Background()
	store := newIntegrationStore(t)

	if err := store.Create(ctx, makeRefreshSession("sid-vis", "adm-1", "hash-vis")); err != nil {
		t.Fatalf("create: %v", err)
	}

	flipped, err := store.RevokeIfActive(ctx, "sid-vis")
	if err != nil || !flipped {
		t.Fatalf("RevokeIfActive = (%v, %v), want (true, nil)", flipped, err)
	}

	got, err := store.FindByTokenHash(ctx, "hash-vis")
	if err != nil {
		t.Fatalf("FindByTokenHash after revoke: %v", err)
	}
	if !got.Revoked {
		t.Fatal("expected the record to report itself revoked")
	}
	if got.AdminID != "adm-1" {
		t.Fatalf("AdminID = %q, want adm-1", got.AdminID)
	}
}

func TestStoreConsistencyRevokeIfActiveIsOneShot(t *testing.T) {
	ctx := context.Background()
	store := newIntegrationStore(t)

	if err := store.Create(ctx, makeRefreshSession("sid-cas", "adm-1", "hash-cas")); err != nil {
		t.Fatalf("create: %v", err)
	}

	flipped, err := store.RevokeIfActive(ctx, "sid-cas")
	if err != nil || !flipped {
		t.Fatalf("first RevokeIfActive = (%v, %v), want (true, nil)", flipped, err)
	}

	flipped, err = store.RevokeIfActive(ctx, "sid-cas")
	if err != nil || flipped {
		t.Fatalf("second RevokeIfActive = (%v, %v), want (false, nil)", flipped, err)
	}

	if _, err := store.RevokeIfActive(ctx, "sid-missing"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("missing session: got %v, want ErrNotFound", err)
	}
}

func TestStoreConsistencyRevokeIdempotentWhilePresent(t *testing.T) {
	ctx := context.Background()
	store := newIntegrationStore(t)

	if err := store.Create(ctx, makeRefreshSession("sid-rev", "adm-1", "hash-rev")); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.Revoke(ctx, "sid-rev"); err != nil {
		t.Fatalf("first revoke: %v", err)
	}
	if err := store.Revoke(ctx, "sid-rev"); err != nil {
		t.Fatalf("second revoke should be a no-op: %v", err)
	}
	if err := store.Revoke(ctx, "sid-unknown"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("unknown session: got %v, want ErrNotFound", err)
	}
}

func TestStoreConsistencyRevokeAllCountsOnlyActive(t *testing.T) {
	ctx := context.Background()
	store := newIntegrationStore(t)

	for i, id := range []string{"sid-a1", "sid-a2", "sid-a3"} {
		if err := store.Create(ctx, makeRefreshSession(id, "adm-a", "hash-a"+string(rune('1'+i)))); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := store.Create(ctx, makeRefreshSession("sid-b1", "adm-b", "hash-b1")); err != nil {
		t.Fatalf("create sid-b1: %v", err)
	}

	// Pre-revoke one of adm-a's sessions; it must not be counted again.
	if _, err := store.RevokeIfActive(ctx, "sid-a2"); err != nil {
		t.Fatalf("pre-revoke: %v", err)
	}

	n, err := store.RevokeAllForAdmin(ctx, "adm-a")
	if err != nil {
		t.Fatalf("revoke all: %v", err)
	}
	if n != 2 {
		t.Fatalf("revoke all flipped %d sessions, want 2", n)
	}

	n, err = store.RevokeAllForAdmin(ctx, "adm-a")
	if err != nil {
		t.Fatalf("second revoke all: %v", err)
	}
	if n != 0 {
		t.Fatalf("second revoke all flipped %d sessions, want 0", n)
	}

	// The other administrator's session is untouched.
	got, err := store.FindByTokenHash(ctx, "hash-b1")
	if err != nil {
		t.Fatalf("find adm-b session: %v", err)
	}
	if got.Revoked {
		t.Fatal("adm-b session should remain active")
	}
}
