package adminauth

import "errors"

// Business failures surface as these sentinels, matched with errors.Is.
// Infrastructure failures wrap ErrStoreUnavailable instead so callers can
// tell a denial from an outage.
var (
	// ErrInvalidCredentials covers unknown email, inactive account, and
	// wrong password at login. The three cases are indistinguishable on
	// purpose.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidAdmin is the 2FA-step counterpart for a missing or
	// inactive administrator. Unlike login, the second factor step does
	// not collapse it with a wrong code: the caller already holds a
	// valid admin ID from step one.
	ErrInvalidAdmin = errors.New("invalid administrator")

	// ErrTwoFactorRequired is not returned by Engine methods
	// (LoginResult.RequiresTwoFactor models the state) but is exported
	// for boundary layers that prefer an error value.
	ErrTwoFactorRequired = errors.New("two-factor verification required")

	ErrInvalidTwoFactorCode    = errors.New("invalid two-factor code")
	ErrTwoFactorAlreadyEnabled = errors.New("two-factor authentication already enabled")
	ErrTwoFactorNotEnabled     = errors.New("two-factor authentication not enabled")

	// ErrInvalidOrExpiredRefreshToken is the single refresh failure the
	// outside world sees. Whether the token was unknown, already used,
	// expired, or orphaned is audit-log detail, not API surface.
	ErrInvalidOrExpiredRefreshToken = errors.New("invalid or expired refresh token")

	// ErrInvalidOrExpiredAccessToken collapses signature, format, and
	// lifetime failures of an access token.
	ErrInvalidOrExpiredAccessToken = errors.New("invalid or expired access token")

	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	// ErrStoreUnavailable wraps credential or session backend failures.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrAdminNotFound is the CredentialStore miss sentinel. Engine
	// methods collapse it into ErrInvalidCredentials or ErrInvalidAdmin
	// before it reaches a client.
	ErrAdminNotFound = errors.New("administrator not found")

	// ErrEmailTaken is returned by CredentialStore.Create on a unique
	// violation.
	ErrEmailTaken = errors.New("email already registered")
)

// Builder misconfiguration.
var (
	ErrMissingCredentialStore = errors.New("credential store is required")
	ErrMissingSessionStore    = errors.New("session store is required")
)
