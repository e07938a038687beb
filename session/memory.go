package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-process Store. It backs tests and
// single-node deployments; anything multi-node wants RedisStore or the
// Postgres store instead.
type MemoryStore struct {
	mu     sync.Mutex
	byID   map[string]*RefreshSession
	byHash map[string]string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]*RefreshSession),
		byHash: make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, sess *RefreshSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sess
	s.byID[cp.ID] = &cp
	s.byHash[cp.TokenHash] = cp.ID
	return nil
}

func (s *MemoryStore) FindByTokenHash(_ context.Context, tokenHash string) (*RefreshSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byHash[tokenHash]
	if !ok {
		return nil, ErrNotFound
	}
	sess, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *MemoryStore) RevokeIfActive(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok {
		return false, ErrNotFound
	}
	if sess.Revoked {
		return false, nil
	}
	sess.Revoked = true
	return true, nil
}

func (s *MemoryStore) Revoke(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	sess.Revoked = true
	return nil
}

func (s *MemoryStore) RevokeAllForAdmin(_ context.Context, adminID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flipped := 0
	for _, sess := range s.byID {
		if sess.AdminID == adminID && !sess.Revoked {
			sess.Revoked = true
			flipped++
		}
	}
	return flipped, nil
}

// DeleteExpired drops records whose expiry is at or before now. The
// rotator never needs this; it exists for long-running processes that
// would otherwise grow the maps without bound.
func (s *MemoryStore) DeleteExpired(_ context.Context, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.byID {
		if !sess.ExpiresAt.After(now) {
			delete(s.byID, id)
			delete(s.byHash, sess.TokenHash)
			removed++
		}
	}
	return removed
}
