package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const rawTokenBytes = 32

// NewRawToken returns a fresh opaque refresh token: 256 bits from
// crypto/rand, URL-safe base64 without padding.
func NewRawToken() (string, error) {
	buf := make([]byte, rawTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken derives the storage key for a raw token as hex-encoded
// HMAC-SHA256 under the server pepper. Keying the hash means a stolen
// store dump cannot be turned back into usable tokens without the
// pepper.
func HashToken(pepper []byte, raw string) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
