package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// secretBytes is the shared-secret length: 160 bits, the RFC 4226
// recommendation and what authenticator apps expect.
const secretBytes = 20

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Config tunes code parameters. Zero values take the authenticator-app
// defaults (6 digits, 30 s period, ±1 step drift window).
type Config struct {
	Issuer string
	Digits int
	Period int
	Skew   int
}

// Engine generates and verifies time-based one-time codes. Safe for
// concurrent use.
type Engine struct {
	cfg Config
}

// New validates cfg, applies defaults, and returns an Engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Digits == 0 {
		cfg.Digits = 6
	}
	if cfg.Period == 0 {
		cfg.Period = 30
	}
	if cfg.Skew == 0 {
		cfg.Skew = 1
	}
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("totp: issuer is required")
	}
	if cfg.Digits < 6 || cfg.Digits > 8 {
		return nil, fmt.Errorf("totp: digits must be 6..8")
	}
	if cfg.Period < 15 || cfg.Period > 120 {
		return nil, fmt.Errorf("totp: period must be 15..120 seconds")
	}
	if cfg.Skew < 0 || cfg.Skew > 2 {
		return nil, fmt.Errorf("totp: skew must be 0..2 steps")
	}
	return &Engine{cfg: cfg}, nil
}

// GenerateSecret returns a fresh 160-bit shared secret.
func (e *Engine) GenerateSecret() ([]byte, error) {
	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// EncodeSecret renders a secret in the unpadded base32 form authenticator
// apps accept.
func EncodeSecret(secret []byte) string {
	return b32.EncodeToString(secret)
}

// DecodeSecret parses the base32 form back into raw bytes.
func DecodeSecret(encoded string) ([]byte, error) {
	return b32.DecodeString(strings.ToUpper(strings.TrimSpace(encoded)))
}

// ProvisionURI builds the otpauth:// enrollment URI embedding issuer and
// account label, suitable for QR display during 2FA setup.
func (e *Engine) ProvisionURI(account string, secret []byte) string {
	label := url.PathEscape(e.cfg.Issuer + ":" + account)

	v := url.Values{}
	v.Set("secret", EncodeSecret(secret))
	v.Set("issuer", e.cfg.Issuer)
	v.Set("period", strconv.Itoa(e.cfg.Period))
	v.Set("digits", strconv.Itoa(e.cfg.Digits))
	v.Set("algorithm", "SHA1")

	return "otpauth://totp/" + label + "?" + v.Encode()
}

// VerifyCode reports whether code matches secret at time `at`, checking the
// current step and Skew adjacent steps on each side. Comparison per window is
// constant-time. Malformed codes and empty secrets never match.
func (e *Engine) VerifyCode(secret []byte, code string, at time.Time) bool {
	trimmed := strings.TrimSpace(code)
	if len(trimmed) != e.cfg.Digits || !allDigits(trimmed) {
		return false
	}
	if len(secret) == 0 {
		return false
	}

	base := at.Unix() / int64(e.cfg.Period)
	matched := false
	for step := -e.cfg.Skew; step <= e.cfg.Skew; step++ {
		counter := base + int64(step)
		if counter < 0 {
			continue
		}
		want := hotpCode(secret, counter, e.cfg.Digits)
		if subtle.ConstantTimeCompare([]byte(want), []byte(trimmed)) == 1 {
			matched = true
		}
	}
	return matched
}

// CodeAt computes the code for the step containing `at`. Exposed for
// enrollment tests and the demo tool; verification should use VerifyCode.
func (e *Engine) CodeAt(secret []byte, at time.Time) string {
	return hotpCode(secret, at.Unix()/int64(e.cfg.Period), e.cfg.Digits)
}

// hotpCode is RFC 4226 dynamic truncation over HMAC-SHA1.
func hotpCode(secret []byte, counter int64, digits int) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, secret)
	_, _ = mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := (int(sum[offset])&0x7f)<<24 |
		(int(sum[offset+1])&0xff)<<16 |
		(int(sum[offset+2])&0xff)<<8 |
		(int(sum[offset+3]) & 0xff)

	mod := 1
	for i := 0; i < digits; i++ {
		mod *= 10
	}
	return fmt.Sprintf("%0*d", digits, bin%mod)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
