package adminauth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryCredentialStore is a map-backed CredentialStore for tests,
// examples, and single-process demos. Production deployments use
// pgstore. Email uniqueness is enforced case-insensitively, matching
// the Postgres schema.
type MemoryCredentialStore struct {
	mu      sync.RWMutex
	byID    map[string]*Administrator
	byEmail map[string]string
}

var _ CredentialStore = (*MemoryCredentialStore)(nil)

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{
		byID:    make(map[string]*Administrator),
		byEmail: make(map[string]string),
	}
}

// Create stores a copy of admin. An empty ID is filled with a random
// UUID and written back to the caller's struct.
func (s *MemoryCredentialStore) Create(ctx context.Context, admin *Administrator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalizeEmail(admin.Email)
	if _, taken := s.byEmail[email]; taken {
		return ErrEmailTaken
	}
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}

	cp := cloneAdmin(admin)
	cp.Email = email
	now := time.Now()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now

	s.byID[cp.ID] = cp
	s.byEmail[email] = cp.ID
	return nil
}

func (s *MemoryCredentialStore) FindByID(ctx context.Context, id string) (*Administrator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	admin, ok := s.byID[id]
	if !ok {
		return nil, ErrAdminNotFound
	}
	return cloneAdmin(admin), nil
}

func (s *MemoryCredentialStore) FindByEmail(ctx context.Context, email string) (*Administrator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrAdminNotFound
	}
	return cloneAdmin(s.byID[id]), nil
}

func (s *MemoryCredentialStore) Update(ctx context.Context, id string, upd AdminUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	admin, ok := s.byID[id]
	if !ok {
		return ErrAdminNotFound
	}
	if upd.Empty() {
		return nil
	}

	if upd.DisplayName != nil {
		admin.DisplayName = *upd.DisplayName
	}
	if upd.Role != nil {
		admin.Role = *upd.Role
	}
	if upd.Active != nil {
		admin.Active = *upd.Active
	}
	if upd.PasswordHash != nil {
		admin.PasswordHash = *upd.PasswordHash
	}
	if upd.TwoFactorEnabled != nil {
		admin.TwoFactorEnabled = *upd.TwoFactorEnabled
	}
	if upd.TwoFactorSecret != nil {
		admin.TwoFactorSecret = append([]byte(nil), (*upd.TwoFactorSecret)...)
	}
	if upd.BackupCodeHashes != nil {
		admin.BackupCodeHashes = append([]string(nil), (*upd.BackupCodeHashes)...)
	}
	admin.UpdatedAt = time.Now()
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// cloneAdmin deep-copies the record so callers cannot alias the stored
// slices.
func cloneAdmin(a *Administrator) *Administrator {
	cp := *a
	cp.TwoFactorSecret = append([]byte(nil), a.TwoFactorSecret...)
	cp.BackupCodeHashes = append([]string(nil), a.BackupCodeHashes...)
	return &cp
}
