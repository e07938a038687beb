//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/norventa/adminauth"
	"github.com/norventa/adminauth/permission"
	"github.com/norventa/adminauth/session"
)

func TestRefreshRaceSingleWinner(t *testing.T) {
	ctx := context.Background()
	rotator, _ := newIntegrationRotator(t)

	meta := session.Meta{IP: "127.0.0.1", UserAgent: "race-test"}
	raw, _, err := rotator.Issue(ctx, "adm-race", meta)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, _, _, err := rotator.Rotate(ctx, raw, meta)
			results <- err
		}()
	}

	close(start)
	wg.Wait()
	close(results)

	success := 0
	for err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, session.ErrTokenRevoked):
		default:
			t.Fatalf("unexpected rotate error: %v", err)
		}
	}

	if success != 1 {
		t.Fatalf("expected exactly one winner, got %d", success)
	}
}

// TestEngineRefreshReplayCounted drives the same invariant through the
// engine surface: a consumed refresh token must not work again, and the
// replay lands in the reuse counter.
func TestEngineRefreshReplayCounted(t *testing.T) {
	ctx := context.Background()
	engine, creds := newIntegrationEngine(t)
	seedAdmin(t, creds, "race@example.com", permission.RoleEditor)

	res, err := engine.Login(ctx, "race@example.com", integrationPassword, adminauth.ClientMeta{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := engine.Refresh(ctx, res.RefreshToken, adminauth.ClientMeta{}); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := engine.Refresh(ctx, res.RefreshToken, adminauth.ClientMeta{}); !errors.Is(err, adminauth.ErrInvalidOrExpiredRefreshToken) {
		t.Fatalf("expected ErrInvalidOrExpiredRefreshToken on replay, got %v", err)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[adminauth.MetricRefreshReuseDetected] == 0 {
		t.Fatal("expected the replay to land in the reuse counter")
	}
}
