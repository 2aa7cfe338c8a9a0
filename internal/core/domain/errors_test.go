package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrInvalidInput", ErrInvalidInput, "invalid input"},
		{"ErrUnauthorized", ErrUnauthorized, "unauthorized"},
		{"ErrMissingCredentials", ErrMissingCredentials, "provider credentials not configured"},
		{"ErrNotConnected", ErrNotConnected, "provider not connected"},
		{"ErrSecretDecryption", ErrSecretDecryption, "secret decryption failed"},
		{"ErrImportInProgress", ErrImportInProgress, "import already in progress"},
		{"ErrInvalidState", ErrInvalidState, "invalid oauth state"},
		{"ErrLockNotHeld", ErrLockNotHeld, "lock not held"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, tt.err.Error())
			}
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	allErrors := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrUnauthorized,
		ErrMissingCredentials,
		ErrNotConnected,
		ErrSecretDecryption,
		ErrImportInProgress,
		ErrInvalidState,
		ErrLockNotHeld,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestProviderError(t *testing.T) {
	err := &ProviderError{Op: "list activities", StatusCode: http.StatusForbidden, Body: `{"message":"forbidden"}`}

	want := `provider list activities failed with status 403: {"message":"forbidden"}`
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
	if err.Unauthorized() {
		t.Error("403 should not be unauthorized")
	}
}

func TestIsUnauthorized(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"401", &ProviderError{StatusCode: 401}, true},
		{"wrapped 401", fmt.Errorf("fetch page 3: %w", &ProviderError{StatusCode: 401}), true},
		{"500", &ProviderError{StatusCode: 500}, false},
		{"rate limited", &RateLimitExceededError{Attempts: 6}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUnauthorized(tt.err); got != tt.want {
				t.Errorf("IsUnauthorized() = %v, want %v", got, tt.want)
			}
		})
	}
}
