// Package crypto provides the at-rest secret codec for credential and token columns.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driven"
)

const (
	// Prefix marks a value as ciphertext. The version is part of the prefix
	// so a future format can be told apart from this one.
	Prefix = "enc:v1:"

	// nonceSize is the AES-GCM nonce size (12 bytes is standard)
	nonceSize = 12

	// KeySize is the required key size for AES-256
	KeySize = 32
)

// ErrInvalidKeySize is returned when the encryption key is not 32 bytes.
var ErrInvalidKeySize = errors.New("encryption key must be 32 bytes")

// Verify interface compliance
var _ driven.SecretCodec = (*Codec)(nil)

// Codec handles AES-256-GCM encryption of string secrets.
// Encoded format: "enc:v1:" || base64(nonce(12) || ciphertext(N))
type Codec struct {
	gcm cipher.AEAD
}

// NewCodec creates a codec with the given 32-byte key.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return &Codec{gcm: gcm}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	blob := c.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return Prefix + base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt opens a value produced by Encrypt.
// Every failure is reported as domain.ErrSecretDecryption.
func (c *Codec) Decrypt(ciphertext string) (string, error) {
	if !c.IsEncrypted(ciphertext) {
		return "", fmt.Errorf("%w: missing %s prefix", domain.ErrSecretDecryption, Prefix)
	}

	blob, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ciphertext, Prefix))
	if err != nil {
		return "", fmt.Errorf("%w: malformed encoding", domain.ErrSecretDecryption)
	}

	if len(blob) < nonceSize+c.gcm.Overhead() {
		return "", fmt.Errorf("%w: blob too short", domain.ErrSecretDecryption)
	}

	plaintext, err := c.gcm.Open(nil, blob[:nonceSize], blob[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", domain.ErrSecretDecryption)
	}

	return string(plaintext), nil
}

// IsEncrypted reports whether value carries the codec prefix.
func (c *Codec) IsEncrypted(value string) bool {
	return strings.HasPrefix(value, Prefix)
}

// DecryptIfEncrypted returns legacy plaintext unchanged.
// A prefixed value that fails to decrypt is still an error.
func (c *Codec) DecryptIfEncrypted(value string) (string, bool, error) {
	if !c.IsEncrypted(value) {
		return value, false, nil
	}
	plaintext, err := c.Decrypt(value)
	if err != nil {
		return "", true, err
	}
	return plaintext, true, nil
}
