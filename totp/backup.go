package totp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// backupAlphabet avoids the glyphs users misread (I, O, 0, 1). Ten symbols at
// five bits each give 50 bits of entropy per code.
const (
	backupAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	backupCodeLength = 10

	// DefaultBackupCodeCount is how many codes enrollment hands out.
	DefaultBackupCodeCount = 10
)

// GenerateBackupCodes returns n independent single-use recovery codes in
// display form ("XXXXX-XXXXX"). Callers persist only their hashes.
func GenerateBackupCodes(n int) ([]string, error) {
	if n <= 0 {
		return nil, fmt.Errorf("totp: backup code count must be positive")
	}
	codes := make([]string, 0, n)
	for i := 0; i < n; i++ {
		var b strings.Builder
		b.Grow(backupCodeLength + 1)
		for j := 0; j < backupCodeLength; j++ {
			idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(backupAlphabet))))
			if err != nil {
				return nil, err
			}
			b.WriteByte(backupAlphabet[idx.Int64()])
		}
		codes = append(codes, formatBackupCode(b.String()))
	}
	return codes, nil
}

func formatBackupCode(code string) string {
	if len(code) < 8 {
		return code
	}
	mid := len(code) / 2
	return code[:mid] + "-" + code[mid:]
}

// CanonicalizeBackupCode strips separators and whitespace and upper-cases, so
// users may type codes with or without the display hyphen.
func CanonicalizeBackupCode(code string) string {
	s := strings.ToUpper(strings.TrimSpace(code))
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, " ", "")
}

// HashBackupCode derives the storable hash of a code, salted with the owning
// administrator's id so identical codes across accounts hash differently.
func HashBackupCode(adminID, code string) string {
	canonical := CanonicalizeBackupCode(code)
	data := make([]byte, 0, len(adminID)+1+len(canonical))
	data = append(data, adminID...)
	data = append(data, 0)
	data = append(data, canonical...)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// MatchBackupCode reports the index of the hash matching code, or -1. Every
// stored hash is compared in constant time regardless of where a match sits.
func MatchBackupCode(adminID, code string, hashes []string) int {
	candidate := []byte(HashBackupCode(adminID, code))
	matched := -1
	for i, stored := range hashes {
		if subtle.ConstantTimeCompare(candidate, []byte(stored)) == 1 && matched == -1 {
			matched = i
		}
	}
	return matched
}

// RemoveBackupCode returns a new slice without the hash at index i. The
// consumed code is gone permanently; no code is usable twice.
func RemoveBackupCode(hashes []string, i int) []string {
	if i < 0 || i >= len(hashes) {
		return hashes
	}
	out := make([]string, 0, len(hashes)-1)
	out = append(out, hashes[:i]...)
	return append(out, hashes[i+1:]...)
}
