package adminauth

import (
	"errors"
	"time"

	"github.com/norventa/adminauth/internal/audit"
	"github.com/norventa/adminauth/password"
)

// Config carries every tunable of the engine. Zero values are filled by
// defaults at Build; Validate runs after defaulting and rejects
// configurations the engine cannot operate safely with.
type Config struct {
	JWT      JWTConfig
	Refresh  RefreshConfig
	TOTP     TOTPConfig
	Password password.Config
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// JWTConfig controls access-token minting and verification. Key is the
// HS256 signing secret and must be at least 32 bytes.
type JWTConfig struct {
	Key       []byte
	AccessTTL time.Duration
	Issuer    string
	Audience  string
	Leeway    time.Duration
}

// RefreshConfig controls the opaque refresh token lifecycle. Pepper keys
// the HMAC under which token hashes are stored; rotating it invalidates
// every outstanding refresh token at once.
type RefreshConfig struct {
	TTL    time.Duration
	Pepper []byte
}

/*
====================================
SECOND FACTOR CONFIG
====================================
*/

// TOTPConfig controls the second factor. SecretCipherKey is the 32-byte
// AES-256-GCM key under which TOTP secrets rest in the credential store.
// Issuer defaults to the JWT issuer and labels provisioning URIs.
type TOTPConfig struct {
	Issuer          string
	Digits          int
	Period          int
	Skew            int
	SecretCipherKey []byte
	BackupCodeCount int
}

/*
====================================
OBSERVABILITY CONFIG
====================================
*/

// AuditConfig configures the audit dispatcher buffering.
type AuditConfig = audit.Config

// MetricsConfig toggles the in-memory counters and the token
// verification latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

const (
	minJWTKeyBytes        = 32
	minRefreshPepperBytes = 16
	secretCipherKeyBytes  = 32
	maxBackupCodes        = 20
)

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL: 24 * time.Hour,
			Issuer:    "adminauth",
			Audience:  "admin-app",
			Leeway:    30 * time.Second,
		},
		Refresh: RefreshConfig{
			TTL: 7 * 24 * time.Hour,
		},
		TOTP: TOTPConfig{
			Digits:          6,
			Period:          30,
			Skew:            1,
			BackupCodeCount: 10,
		},
		Password: password.DefaultConfig(),
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// normalized returns a copy with defaults applied. Key material is
// cloned so later caller mutation cannot reach the engine.
func (c Config) normalized() Config {
	def := defaultConfig()

	if c.JWT.AccessTTL <= 0 {
		c.JWT.AccessTTL = def.JWT.AccessTTL
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = def.JWT.Issuer
	}
	if c.JWT.Audience == "" {
		c.JWT.Audience = def.JWT.Audience
	}
	if c.JWT.Leeway <= 0 {
		c.JWT.Leeway = def.JWT.Leeway
	}
	if c.Refresh.TTL <= 0 {
		c.Refresh.TTL = def.Refresh.TTL
	}
	if c.TOTP.Issuer == "" {
		c.TOTP.Issuer = c.JWT.Issuer
	}
	if c.TOTP.Digits == 0 {
		c.TOTP.Digits = def.TOTP.Digits
	}
	if c.TOTP.Period == 0 {
		c.TOTP.Period = def.TOTP.Period
	}
	if c.TOTP.Skew == 0 {
		c.TOTP.Skew = def.TOTP.Skew
	}
	if c.TOTP.BackupCodeCount == 0 {
		c.TOTP.BackupCodeCount = def.TOTP.BackupCodeCount
	}
	if c.Password == (password.Config{}) {
		c.Password = def.Password
	}
	if c.Audit.BufferSize <= 0 {
		c.Audit.BufferSize = def.Audit.BufferSize
	}

	c.JWT.Key = cloneBytes(c.JWT.Key)
	c.Refresh.Pepper = cloneBytes(c.Refresh.Pepper)
	c.TOTP.SecretCipherKey = cloneBytes(c.TOTP.SecretCipherKey)

	return c
}

// Validate checks a normalized Config.
func (c *Config) Validate() error {
	// Tokens
	if len(c.JWT.Key) < minJWTKeyBytes {
		return errors.New("JWT Key must be at least 32 bytes")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if len(c.Refresh.Pepper) < minRefreshPepperBytes {
		return errors.New("Refresh Pepper must be at least 16 bytes")
	}
	if c.Refresh.TTL <= 0 {
		return errors.New("Refresh TTL must be > 0")
	}

	// Second factor
	if len(c.TOTP.SecretCipherKey) != secretCipherKeyBytes {
		return errors.New("TOTP SecretCipherKey must be exactly 32 bytes")
	}
	if c.TOTP.BackupCodeCount < 1 || c.TOTP.BackupCodeCount > maxBackupCodes {
		return errors.New("TOTP BackupCodeCount must be in 1..20")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}
