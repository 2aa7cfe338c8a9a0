package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMissingCredentials indicates the user has not configured a complete
	// provider application identity (client id, secret and redirect URI).
	ErrMissingCredentials = errors.New("provider credentials not configured")

	// ErrNotConnected indicates the user has no provider token on file.
	ErrNotConnected = errors.New("provider not connected")

	// ErrSecretDecryption indicates stored secret material could not be decrypted.
	ErrSecretDecryption = errors.New("secret decryption failed")

	// ErrImportInProgress indicates another import is already running for the user
	ErrImportInProgress = errors.New("import already in progress")

	// ErrInvalidState indicates an OAuth state parameter failed verification
	ErrInvalidState = errors.New("invalid oauth state")

	// ErrLockNotHeld indicates the caller no longer owns the lock
	ErrLockNotHeld = errors.New("lock not held")
)

// ProviderError is a non-2xx response from the provider.
// StatusCode is matched by value; Body is the verbatim response body.
type ProviderError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Unauthorized reports whether the provider rejected the bearer credential itself.
func (e *ProviderError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// RateLimitExceededError is returned once the rate-limit retry budget is spent.
type RateLimitExceededError struct {
	Attempts int
	LastWait time.Duration
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("provider rate limit exceeded after %d attempts", e.Attempts)
}

// IsUnauthorized reports whether err carries a 401 from the provider.
func IsUnauthorized(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr) && perr.Unauthorized()
}
