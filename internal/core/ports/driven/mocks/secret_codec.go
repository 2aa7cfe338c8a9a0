package mocks

import (
	"strings"
	"sync"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

// MockCiphertextPrefix marks values produced by MockSecretCodec.
const MockCiphertextPrefix = "mock-enc:"

// MockSecretCodec is a reversible, non-cryptographic codec for testing.
// Ciphertext is MockCiphertextPrefix followed by the plaintext.
type MockSecretCodec struct {
	mu           sync.Mutex
	encryptCalls int

	// Optional hooks
	EncryptFn func(plaintext string) (string, error)
	DecryptFn func(ciphertext string) (string, error)
}

// NewMockSecretCodec creates a new MockSecretCodec.
func NewMockSecretCodec() *MockSecretCodec {
	return &MockSecretCodec{}
}

func (m *MockSecretCodec) Encrypt(plaintext string) (string, error) {
	m.mu.Lock()
	m.encryptCalls++
	m.mu.Unlock()
	if m.EncryptFn != nil {
		return m.EncryptFn(plaintext)
	}
	return MockCiphertextPrefix + plaintext, nil
}

func (m *MockSecretCodec) Decrypt(ciphertext string) (string, error) {
	if m.DecryptFn != nil {
		return m.DecryptFn(ciphertext)
	}
	if !m.IsEncrypted(ciphertext) {
		return "", domain.ErrSecretDecryption
	}
	return strings.TrimPrefix(ciphertext, MockCiphertextPrefix), nil
}

func (m *MockSecretCodec) IsEncrypted(value string) bool {
	return strings.HasPrefix(value, MockCiphertextPrefix)
}

func (m *MockSecretCodec) DecryptIfEncrypted(value string) (string, bool, error) {
	if !m.IsEncrypted(value) {
		return value, false, nil
	}
	plaintext, err := m.Decrypt(value)
	return plaintext, true, err
}

// EncryptCalls returns how many times Encrypt was called.
func (m *MockSecretCodec) EncryptCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.encryptCalls
}

// Seal is a test helper returning the mock ciphertext for plaintext.
func Seal(plaintext string) string {
	return MockCiphertextPrefix + plaintext
}
