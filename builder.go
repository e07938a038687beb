package adminauth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/norventa/adminauth/internal/audit"
	"github.com/norventa/adminauth/jwt"
	"github.com/norventa/adminauth/password"
	"github.com/norventa/adminauth/session"
	"github.com/norventa/adminauth/totp"
)

// Builder assembles an Engine. Configure it during initialization and
// call Build once; a Builder is not safe for concurrent use.
type Builder struct {
	config Config

	creds    CredentialStore
	sessions session.Store
	sink     AuditSink
	clock    func() time.Time

	built bool
}

// New returns a Builder seeded with the default configuration. The
// caller still has to supply key material and both stores.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration. Zero fields are filled
// from the defaults at Build time.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithCredentialStore sets the administrator record backend.
func (b *Builder) WithCredentialStore(store CredentialStore) *Builder {
	b.creds = store
	return b
}

// WithSessionStore sets the refresh session backend.
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.sessions = store
	return b
}

// WithAuditSink sets where audit events are delivered. A nil sink with
// auditing enabled discards events after counting them.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// WithMetricsEnabled toggles the counter set.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the token verification latency
// histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock overrides the time source everywhere the engine reads a
// clock (token lifetimes, TOTP windows, session expiry). Tests use it;
// production code should not.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// Build validates the configuration, derives the token, session,
// password, and second-factor subcomponents, and wires the audit
// dispatcher and metrics. A Builder builds at most one Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config.normalized()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.creds == nil {
		return nil, ErrMissingCredentialStore
	}
	if b.sessions == nil {
		return nil, ErrMissingSessionStore
	}

	// -------- TOKENS --------
	tokens, err := jwt.NewManager(jwt.Config{
		Key:       cfg.JWT.Key,
		AccessTTL: cfg.JWT.AccessTTL,
		Issuer:    cfg.JWT.Issuer,
		Audience:  cfg.JWT.Audience,
		Leeway:    cfg.JWT.Leeway,
		Now:       b.clock,
	})
	if err != nil {
		return nil, err
	}

	// -------- REFRESH SESSIONS --------
	rotator, err := session.NewRotator(b.sessions, credentialOwnerSource{creds: b.creds}, session.Config{
		Pepper: cfg.Refresh.Pepper,
		TTL:    cfg.Refresh.TTL,
		Now:    b.clock,
	})
	if err != nil {
		return nil, err
	}

	// -------- SECOND FACTOR --------
	totpEngine, err := totp.New(totp.Config{
		Issuer: cfg.TOTP.Issuer,
		Digits: cfg.TOTP.Digits,
		Period: cfg.TOTP.Period,
		Skew:   cfg.TOTP.Skew,
	})
	if err != nil {
		return nil, err
	}
	cipher, err := totp.NewSecretCipher(cfg.TOTP.SecretCipherKey)
	if err != nil {
		return nil, err
	}

	// -------- PASSWORDS --------
	verifier, err := password.New(cfg.Password)
	if err != nil {
		return nil, err
	}
	decoy, err := mintDecoyHash(verifier)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		cfg:       cfg,
		creds:     b.creds,
		rotator:   rotator,
		tokens:    tokens,
		totp:      totpEngine,
		cipher:    cipher,
		passwords: verifier,
		audit:     audit.NewDispatcher(cfg.Audit, b.sink),
		metrics:   NewMetrics(cfg.Metrics),
		decoyHash: decoy,
		clock:     b.clock,
	}

	b.built = true
	return engine, nil
}

// mintDecoyHash hashes a throwaway random password for the login miss
// path. Nothing a client sends can ever match it.
func mintDecoyHash(v *password.Verifier) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return v.Hash(hex.EncodeToString(buf))
}
