package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	algorithmID = "argon2id"

	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16

	// Hard floor only; real length policy lives at the HTTP boundary.
	minPasswordBytes = 8
)

// Config holds argon2id cost parameters.
type Config struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultConfig returns production-strength parameters. Tests use lighter ones.
func DefaultConfig() Config {
	return Config{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Verifier hashes and verifies passwords. Safe for concurrent use.
type Verifier struct {
	cfg Config
}

// New validates cfg and returns a Verifier.
func New(cfg Config) (*Verifier, error) {
	switch {
	case cfg.Memory < minMemoryKB:
		return nil, errors.New("password: memory must be >= 8192 KiB")
	case cfg.Time < minTimeCost:
		return nil, errors.New("password: time cost must be >= 1")
	case cfg.Parallelism < minParallelism:
		return nil, errors.New("password: parallelism must be >= 1")
	case cfg.SaltLength < minSaltLength:
		return nil, errors.New("password: salt length must be >= 16")
	case cfg.KeyLength < minKeyLength:
		return nil, errors.New("password: key length must be >= 16")
	}
	return &Verifier{cfg: cfg}, nil
}

// ErrTooShort reports a password under the hard length floor.
var ErrTooShort = errors.New("password too short")

// Hash derives an argon2id hash of plain with a fresh random salt and encodes
// it in PHC string format.
func (v *Verifier) Hash(plain string) (string, error) {
	if len(plain) < minPasswordBytes {
		return "", fmt.Errorf("%w: need at least %d bytes", ErrTooShort, minPasswordBytes)
	}

	salt := make([]byte, v.cfg.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(plain), salt, v.cfg.Time, v.cfg.Memory, v.cfg.Parallelism, v.cfg.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		v.cfg.Memory, v.cfg.Time, v.cfg.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the hash of plain with the parameters embedded in encoded
// and compares in constant time. A malformed encoded hash is an error, not a
// mismatch, so storage corruption is distinguishable from a wrong password.
func (v *Verifier) Verify(plain, encoded string) (bool, error) {
	h, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}
	key := argon2.IDKey([]byte(plain), h.salt, h.time, h.memory, h.parallelism, uint32(len(h.key)))
	return subtle.ConstantTimeCompare(key, h.key) == 1, nil
}

// NeedsRehash reports whether encoded was produced with weaker parameters than
// the verifier's current configuration.
func (v *Verifier) NeedsRehash(encoded string) (bool, error) {
	h, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}
	weaker := h.memory < v.cfg.Memory ||
		h.time < v.cfg.Time ||
		h.parallelism < v.cfg.Parallelism ||
		uint32(len(h.key)) != v.cfg.KeyLength
	return weaker, nil
}

type phcHash struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

// parsePHC accepts the canonical argon2id serialization
// $argon2id$v=19$m=..,t=..,p=..$salt$key with unpadded base64 fields.
func parsePHC(encoded string) (phcHash, error) {
	var h phcHash

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return h, errors.New("password: malformed PHC hash")
	}
	if parts[1] != algorithmID {
		return h, errors.New("password: unsupported algorithm")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return h, errors.New("password: unsupported argon2 version")
	}

	var parallelism uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.memory, &h.time, &parallelism); err != nil {
		return h, errors.New("password: malformed cost parameters")
	}
	if h.memory < minMemoryKB || h.time < minTimeCost || parallelism < 1 || parallelism > 255 {
		return h, errors.New("password: cost parameters out of range")
	}
	h.parallelism = uint8(parallelism)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || uint32(len(salt)) < minSaltLength {
		return h, errors.New("password: malformed salt")
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || uint32(len(key)) < minKeyLength {
		return h, errors.New("password: malformed key")
	}

	h.salt = salt
	h.key = key
	return h, nil
}
