package adminauth

import (
	"context"
	"time"

	"github.com/norventa/adminauth/permission"
	"github.com/norventa/adminauth/session"
)

// Administrator is the credential record the engine authenticates
// against. Provisioning and profile management happen elsewhere; the
// engine only reads it and mutates the authentication-owned fields
// (password hash, 2FA state, backup codes).
type Administrator struct {
	ID          string
	Email       string
	DisplayName string
	Role        permission.Role
	Active      bool

	PasswordHash     string
	TwoFactorEnabled bool
	// TwoFactorSecret holds the AES-GCM encrypted TOTP secret, nil when
	// no enrollment exists or is pending.
	TwoFactorSecret  []byte
	BackupCodeHashes []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AdminUpdate is a partial update; nil fields are left untouched. A
// pointer to a nil slice clears the stored value.
type AdminUpdate struct {
	DisplayName      *string
	Role             *permission.Role
	Active           *bool
	PasswordHash     *string
	TwoFactorEnabled *bool
	TwoFactorSecret  *[]byte
	BackupCodeHashes *[]string
}

// Empty reports whether the update would change nothing.
func (u AdminUpdate) Empty() bool {
	return u.DisplayName == nil && u.Role == nil && u.Active == nil &&
		u.PasswordHash == nil && u.TwoFactorEnabled == nil &&
		u.TwoFactorSecret == nil && u.BackupCodeHashes == nil
}

// CredentialStore is the engine's read/write view of administrator
// records. Implementations return ErrAdminNotFound on a miss and
// ErrEmailTaken when Create hits the unique email constraint.
type CredentialStore interface {
	Create(ctx context.Context, admin *Administrator) error
	FindByID(ctx context.Context, id string) (*Administrator, error)
	FindByEmail(ctx context.Context, email string) (*Administrator, error)
	Update(ctx context.Context, id string, upd AdminUpdate) error
}

// Identity is the verified payload of an access token. It is
// self-contained: building it never touches a store.
type Identity struct {
	ID    string
	Email string
	Role  permission.Role
}

// ClientMeta carries best-effort client attribution (IP, User-Agent)
// into sessions and audit events.
type ClientMeta = session.Meta

// LoginResult is the outcome of the first authentication step. When
// RequiresTwoFactor is set the token fields are empty and the caller
// must follow up with VerifyTwoFactor.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time

	RequiresTwoFactor bool
	Admin             Identity
}

// TokenPair is a freshly rotated access/refresh pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// TwoFactorSetup is handed out exactly once per enrollment attempt. The
// secret is never retrievable again in plaintext.
type TwoFactorSetup struct {
	// Secret is the unpadded base32 TOTP secret for manual entry.
	Secret string
	// ProvisioningURI is the otpauth:// URL authenticator apps scan.
	ProvisioningURI string
}
