package adminauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/norventa/adminauth/internal/audit"
	"github.com/norventa/adminauth/jwt"
	"github.com/norventa/adminauth/password"
	"github.com/norventa/adminauth/permission"
	"github.com/norventa/adminauth/session"
	"github.com/norventa/adminauth/totp"
)

// Engine is the façade every authentication and authorization operation
// goes through. Construct it with New().…Build(); the zero value is not
// usable. All methods are safe for concurrent use.
type Engine struct {
	cfg Config

	creds     CredentialStore
	rotator   *session.Rotator
	tokens    *jwt.Manager
	totp      *totp.Engine
	cipher    *totp.SecretCipher
	passwords *password.Verifier

	audit   *audit.Dispatcher
	metrics *Metrics

	// decoyHash absorbs one full argon2 verification when a login names
	// an unknown email, so the miss path costs what a mismatch costs.
	decoyHash string

	// clock overrides time.Now in tests. Nil means real time.
	clock func() time.Time
}

// Close flushes and stops the audit pipeline. The engine must not be
// used afterwards. Safe to call more than once.
func (e *Engine) Close() {
	e.audit.Close()
}

// MetricsSnapshot returns a point-in-time copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events the dispatcher discarded
// under backpressure. Exporters publish it next to the counters.
func (e *Engine) AuditDropped() uint64 {
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	e.metrics.Inc(id)
}

// VerifyAccessToken parses and verifies an access token and returns the
// identity it asserts. Pure CPU work: no store round-trips, so it is
// safe to call on every request. Expiry, bad signature, and malformed
// input all surface as ErrInvalidOrExpiredAccessToken; the jwt sentinel
// stays in the chain for callers that need the distinction.
func (e *Engine) VerifyAccessToken(token string) (*Identity, error) {
	start := time.Now()
	claims, err := e.tokens.ParseAccess(token)
	e.metrics.Observe(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOrExpiredAccessToken, err)
	}

	role := permission.Role(claims.Role)
	if !permission.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidOrExpiredAccessToken, claims.Role)
	}

	return &Identity{
		ID:    claims.Subject,
		Email: claims.Email,
		Role:  role,
	}, nil
}

// Authorize reports whether identity may perform action on resource.
// A nil identity is unauthenticated; a denied permission is forbidden.
func (e *Engine) Authorize(identity *Identity, resource permission.Resource, action permission.Action) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if !permission.HasPermission(identity.Role, resource, action) {
		e.metricInc(MetricAuthorizeDenied)
		return fmt.Errorf("%w: role %s may not %s %s", ErrForbidden, identity.Role, action, resource)
	}
	return nil
}

// findAdmin looks up an administrator for the 2FA and account
// management verbs, which all key on an ID the caller already proved it
// knows. Misses and inactive records map to ErrInvalidAdmin.
func (e *Engine) findAdmin(ctx context.Context, adminID string) (*Administrator, error) {
	admin, err := e.creds.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return nil, ErrInvalidAdmin
		}
		return nil, storeErr(err)
	}
	if !admin.Active {
		return nil, ErrInvalidAdmin
	}
	return admin, nil
}

// issueTokens mints the access/refresh pair an authenticated
// administrator walks away with.
func (e *Engine) issueTokens(ctx context.Context, admin *Administrator, meta ClientMeta) (*TokenPair, error) {
	access, expiresAt, err := e.tokens.CreateAccess(admin.ID, admin.Email, string(admin.Role))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, _, err := e.rotator.Issue(ctx, admin.ID, meta)
	if err != nil {
		return nil, storeErr(err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}

func identityFor(admin *Administrator) Identity {
	return Identity{ID: admin.ID, Email: admin.Email, Role: admin.Role}
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// credentialOwnerSource adapts the credential store to the rotator's
// owner lookup so a refresh can re-check the administrator's state.
type credentialOwnerSource struct {
	creds CredentialStore
}

func (s credentialOwnerSource) FindOwner(ctx context.Context, adminID string) (session.Owner, error) {
	admin, err := s.creds.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return session.Owner{}, session.ErrOwnerNotFound
		}
		return session.Owner{}, err
	}
	return session.Owner{
		ID:          admin.ID,
		Email:       admin.Email,
		DisplayName: admin.DisplayName,
		Role:        string(admin.Role),
		Active:      admin.Active,
	}, nil
}
