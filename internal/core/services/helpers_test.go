package services

import (
	"context"
	"testing"
	"time"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driven/mocks"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// testEnv wires a TokenManager over in-memory mocks with a fixed clock.
type testEnv struct {
	codec       *mocks.MockSecretCodec
	credentials *mocks.MockCredentialStore
	tokens      *mocks.MockTokenStore
	oauth       *mocks.MockOAuthHandler
	manager     *TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return buildTestEnv()
}

func buildTestEnv() *testEnv {
	env := &testEnv{
		codec:       mocks.NewMockSecretCodec(),
		credentials: mocks.NewMockCredentialStore(),
		tokens:      mocks.NewMockTokenStore(),
		oauth:       mocks.NewMockOAuthHandler(),
	}
	env.oauth.Now = func() time.Time { return testNow }

	env.manager = NewTokenManager(TokenManagerConfig{
		TokenStore:  env.tokens,
		Credentials: NewCredentialResolver(env.credentials, env.codec),
		Codec:       env.codec,
		OAuth:       env.oauth,
		Now:         func() time.Time { return testNow },
	})
	return env
}

// seedCredentials stores encrypted default credentials for userID.
func (e *testEnv) seedCredentials(t *testing.T, userID, clientID, clientSecret string) {
	t.Helper()
	err := e.credentials.Save(context.Background(), &domain.StoredCredentials{
		UserID:       userID,
		ClientID:     mocks.Seal(clientID),
		ClientSecret: mocks.Seal(clientSecret),
		RedirectURI:  mocks.Seal("https://app.test/callback"),
	})
	if err != nil {
		t.Fatalf("seed credentials: %v", err)
	}
}

// seedToken stores a token row with the given column values as-is.
func (e *testEnv) seedToken(userID, access, refresh string, expiresIn time.Duration) {
	e.tokens.Put(&domain.ProviderToken{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    testNow.Add(expiresIn),
	})
}

func (e *testEnv) storedToken(t *testing.T, userID string) *domain.ProviderToken {
	t.Helper()
	tok, err := e.tokens.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	return tok
}
