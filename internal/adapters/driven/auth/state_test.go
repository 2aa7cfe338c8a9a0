package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

func TestStateSigner_RoundTrip(t *testing.T) {
	signer := NewStateSigner("test-secret", 0)

	state, err := signer.Sign("user-1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	userID, err := signer.Verify(state)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("expected user-1, got %s", userID)
	}
}

func TestStateSigner_UniquePerCall(t *testing.T) {
	signer := NewStateSigner("test-secret", 0)

	a, _ := signer.Sign("user-1")
	b, _ := signer.Sign("user-1")
	if a == b {
		t.Error("expected a fresh jti in every state")
	}
}

func TestStateSigner_DefaultTTL(t *testing.T) {
	if got := NewStateSigner("s", -time.Second).ttl; got != DefaultStateTTL {
		t.Errorf("expected %v, got %v", DefaultStateTTL, got)
	}
}

func TestStateSigner_Expired(t *testing.T) {
	signer := NewStateSigner("test-secret", time.Minute)
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return issued }
	state, _ := signer.Sign("user-1")

	signer.now = func() time.Time { return issued.Add(time.Minute + time.Second) }
	if _, err := signer.Verify(state); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestStateSigner_Tampered(t *testing.T) {
	signer := NewStateSigner("test-secret", 0)
	state, _ := signer.Sign("user-1")

	parts := strings.Split(state, ".")
	parts[2] = strings.Repeat("A", len(parts[2]))
	if _, err := signer.Verify(strings.Join(parts, ".")); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
	if _, err := signer.Verify("not-a-jwt"); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestStateSigner_RejectsBearerToken(t *testing.T) {
	token, _ := NewAdapter("test-secret").GenerateToken("user-1", time.Hour)

	if _, err := NewStateSigner("test-secret", 0).Verify(token); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("bearer token must not pass as state, got %v", err)
	}
}
