package driven

// SecretCodec encrypts credential and token material at rest.
// Values that do not carry the codec's marker are treated as legacy plaintext.
type SecretCodec interface {
	// Encrypt returns an encoded ciphertext for plaintext.
	Encrypt(plaintext string) (string, error)

	// Decrypt returns the plaintext of an encoded ciphertext.
	// Malformed or tampered input returns domain.ErrSecretDecryption.
	Decrypt(ciphertext string) (string, error)

	// IsEncrypted reports whether value was produced by Encrypt.
	IsEncrypted(value string) bool

	// DecryptIfEncrypted decrypts value when it is a ciphertext and returns
	// legacy plaintext unchanged. wasEncrypted is false for legacy values.
	DecryptIfEncrypted(value string) (plaintext string, wasEncrypted bool, err error)
}
