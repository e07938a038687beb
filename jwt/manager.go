package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired reports a structurally valid, correctly signed token
	// whose lifetime has elapsed.
	ErrTokenExpired = errors.New("access token expired")

	// ErrTokenInvalid covers every other verification failure: malformed,
	// wrong algorithm, bad signature, wrong issuer or audience.
	ErrTokenInvalid = errors.New("access token invalid")
)

const minKeyBytes = 32

// Config holds the signing key and claim parameters for access tokens.
type Config struct {
	// Key is the HMAC-SHA256 signing key. Minimum 32 bytes.
	Key []byte

	AccessTTL time.Duration
	Issuer    string
	Audience  string
	Leeway    time.Duration

	// Now is the clock used for both minting and validation. Defaults to
	// time.Now; tests substitute a fixed clock.
	Now func() time.Time
}

// AccessClaims is the access-token payload. The administrator id travels in
// the registered subject claim.
type AccessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Manager mints and parses access tokens. Safe for concurrent use.
type Manager struct {
	cfg Config
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Key) < minKeyBytes {
		return nil, fmt.Errorf("jwt: signing key must be at least %d bytes", minKeyBytes)
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("jwt: access TTL must be positive")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("jwt: leeway out of range")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{cfg: cfg}, nil
}

// CreateAccess signs a token asserting {id, email, role} with issued-at and
// expiry claims and a random jti. No side effects beyond clock and randomness.
func (m *Manager) CreateAccess(adminID, email, role string) (string, time.Time, error) {
	now := m.cfg.Now()
	expiresAt := now.Add(m.cfg.AccessTTL)

	claims := AccessClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID,
			ID:        uuid.NewString(),
			Issuer:    m.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if m.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.cfg.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.cfg.Key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseAccess verifies signature, algorithm, lifetime, and the configured
// issuer/audience, and returns the decoded claims.
func (m *Manager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.cfg.Now),
	}
	if m.cfg.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.cfg.Leeway))
	}
	if m.cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.cfg.Issuer))
	}
	if m.cfg.Audience != "" {
		options = append(options, jwt.WithAudience(m.cfg.Audience))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &AccessClaims{}, func(t *jwt.Token) (any, error) {
		// WithValidMethods already rejects foreign algorithms; this guards
		// against parser misconfiguration.
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm %q", t.Method.Alg())
		}
		return m.cfg.Key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
