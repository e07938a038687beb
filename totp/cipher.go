package totp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

var (
	// ErrCipherKeySize reports a key that is not 32 bytes.
	ErrCipherKeySize = errors.New("totp: secret cipher key must be 32 bytes")

	// ErrCiphertextInvalid reports a sealed blob that is truncated, forged,
	// or encrypted under a different key.
	ErrCiphertextInvalid = errors.New("totp: ciphertext invalid")
)

// SecretCipher seals shared secrets for storage with AES-256-GCM. Each sealed
// blob is nonce||ciphertext with a fresh random nonce, so identical secrets
// never produce identical blobs.
type SecretCipher struct {
	aead cipher.AEAD
}

// NewSecretCipher builds a cipher from a 32-byte server-held key. The key
// must be distinct from the JWT signing key and the refresh-token pepper.
func NewSecretCipher(key []byte) (*SecretCipher, error) {
	if len(key) != 32 {
		return nil, ErrCipherKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &SecretCipher{aead: aead}, nil
}

// Encrypt seals plain and returns nonce||ciphertext.
func (c *SecretCipher) Encrypt(plain []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plain, nil), nil
}

// Decrypt opens a blob produced by Encrypt.
func (c *SecretCipher) Decrypt(blob []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	if len(blob) < ns+c.aead.Overhead() {
		return nil, ErrCiphertextInvalid
	}
	plain, err := c.aead.Open(nil, blob[:ns], blob[ns:], nil)
	if err != nil {
		return nil, ErrCiphertextInvalid
	}
	return plain, nil
}
