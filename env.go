package adminauth

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// EnvConfig maps engine settings onto environment variables for
// deployments that configure through the process environment. Secrets
// arrive as plain strings and are converted to key bytes in ToConfig.
type EnvConfig struct {
	JWTKey        string        `env:"ADMINAUTH_JWT_KEY"`
	JWTIssuer     string        `env:"ADMINAUTH_JWT_ISSUER,    default=adminauth"`
	JWTAudience   string        `env:"ADMINAUTH_JWT_AUDIENCE,  default=admin-app"`
	AccessTTL     time.Duration `env:"ADMINAUTH_ACCESS_TTL,    default=24h"`
	RefreshTTL    time.Duration `env:"ADMINAUTH_REFRESH_TTL,   default=168h"`
	RefreshPepper string        `env:"ADMINAUTH_REFRESH_PEPPER"`

	TOTPIssuer      string `env:"ADMINAUTH_TOTP_ISSUER"`
	SecretCipherKey string `env:"ADMINAUTH_TOTP_CIPHER_KEY"`
	BackupCodeCount int    `env:"ADMINAUTH_BACKUP_CODES,  default=10"`

	AuditEnabled    bool `env:"ADMINAUTH_AUDIT_ENABLED,  default=true"`
	AuditBufferSize int  `env:"ADMINAUTH_AUDIT_BUFFER,   default=256"`
	MetricsEnabled  bool `env:"ADMINAUTH_METRICS_ENABLED, default=true"`
}

// LoadConfigFromEnv reads EnvConfig from the process environment and
// converts it into a Config ready for Builder.WithConfig. Validation
// still happens at Build.
func LoadConfigFromEnv(ctx context.Context) (Config, error) {
	var env EnvConfig
	if err := envconfig.Process(ctx, &env); err != nil {
		return Config{}, fmt.Errorf("load config from env: %w", err)
	}
	return env.ToConfig(), nil
}

// ToConfig converts the environment shape into a Config.
func (e EnvConfig) ToConfig() Config {
	return Config{
		JWT: JWTConfig{
			Key:       []byte(e.JWTKey),
			AccessTTL: e.AccessTTL,
			Issuer:    e.JWTIssuer,
			Audience:  e.JWTAudience,
		},
		Refresh: RefreshConfig{
			TTL:    e.RefreshTTL,
			Pepper: []byte(e.RefreshPepper),
		},
		TOTP: TOTPConfig{
			Issuer:          e.TOTPIssuer,
			SecretCipherKey: []byte(e.SecretCipherKey),
			BackupCodeCount: e.BackupCodeCount,
		},
		Audit: AuditConfig{
			Enabled:    e.AuditEnabled,
			BufferSize: e.AuditBufferSize,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: e.MetricsEnabled,
		},
	}
}
