package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const keyDerivationInfo = "stride-sync secret codec v1"

// ParseKey turns the configured ENCRYPTION_KEY into a 32-byte AES key.
// A value that base64-decodes to exactly 32 bytes is used as-is;
// anything else is treated as a passphrase and expanded with HKDF-SHA256.
func ParseKey(configured string) ([]byte, error) {
	configured = strings.TrimSpace(configured)
	if configured == "" {
		return nil, fmt.Errorf("%w: key is empty", ErrInvalidKeySize)
	}

	if raw, err := base64.StdEncoding.DecodeString(configured); err == nil && len(raw) == KeySize {
		return raw, nil
	}

	return DeriveKey([]byte(configured))
}

// DeriveKey derives a 256-bit key from secret using HKDF-SHA256.
func DeriveKey(secret []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret, nil, []byte(keyDerivationInfo))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("read HKDF output: %w", err)
	}
	return key, nil
}
