package session

import "time"

// RefreshSession is one stored refresh token record. TokenHash is the
// keyed hash of the raw token; the raw value itself is never persisted.
type RefreshSession struct {
	ID        string
	AdminID   string
	TokenHash string
	IP        string
	UserAgent string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// Meta carries best-effort client attribution recorded on each session.
// Empty fields are allowed.
type Meta struct {
	IP        string
	UserAgent string
}

// Owner is the session-facing view of an administrator, resolved during
// rotation to decide whether a replacement token may be issued.
type Owner struct {
	ID          string
	Email       string
	DisplayName string
	Role        string
	Active      bool
}
