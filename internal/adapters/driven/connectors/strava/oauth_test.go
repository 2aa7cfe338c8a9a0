package strava

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

func newTestOAuthHandler(t *testing.T, handler http.HandlerFunc) *OAuthHandler {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOAuthHandler(&Config{
		AuthURL:  server.URL + "/oauth/authorize",
		TokenURL: server.URL + "/oauth/token",
	})
}

func TestBuildAuthURL(t *testing.T) {
	h := NewOAuthHandler(nil)

	raw := h.BuildAuthURL(domain.ProviderCredentials{
		ClientID:     "12345",
		ClientSecret: "never-in-url",
		RedirectURI:  "https://app.test/callback",
	}, "signed-state")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "www.strava.com", u.Host)
	assert.Equal(t, "/oauth/authorize", u.Path)

	q := u.Query()
	assert.Equal(t, "12345", q.Get("client_id"))
	assert.Equal(t, "https://app.test/callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "auto", q.Get("approval_prompt"))
	assert.Equal(t, "read,activity:read_all", q.Get("scope"))
	assert.Equal(t, "signed-state", q.Get("state"))
	assert.NotContains(t, raw, "never-in-url")
}

func TestExchangeCode(t *testing.T) {
	h := newTestOAuthHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "12345", r.PostForm.Get("client_id"))
		assert.Equal(t, "shh", r.PostForm.Get("client_secret"))
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "https://app.test/callback", r.PostForm.Get("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token_type":"Bearer","access_token":"a1","refresh_token":"r1","expires_at":1714586400,"expires_in":21600,"athlete":{"id":1}}`))
	})

	grant, err := h.ExchangeCode(context.Background(), domain.ProviderCredentials{
		ClientID:     "12345",
		ClientSecret: "shh",
		RedirectURI:  "https://app.test/callback",
	}, "the-code")
	require.NoError(t, err)

	assert.Equal(t, "a1", grant.AccessToken)
	assert.Equal(t, "r1", grant.RefreshToken)
	assert.Equal(t, time.Unix(1714586400, 0).UTC(), grant.ExpiresAt)
}

func TestExchangeCode_ProviderRejects(t *testing.T) {
	body := `{"message":"Bad Request","errors":[{"resource":"AuthorizationCode","field":"code","code":"invalid"}]}`
	h := newTestOAuthHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(body))
	})

	_, err := h.ExchangeCode(context.Background(), domain.ProviderCredentials{ClientID: "1", ClientSecret: "2", RedirectURI: "https://app.test/cb"}, "bad")

	var perr *domain.ProviderError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
	assert.Equal(t, body, perr.Body)
	assert.Equal(t, "code exchange", perr.Op)
}

func TestRefreshToken(t *testing.T) {
	h := newTestOAuthHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "pinned-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "pinned-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "r-old", r.PostForm.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token_type":"Bearer","access_token":"a2","refresh_token":"r-new","expires_at":1714608000,"expires_in":21600}`))
	})

	grant, err := h.RefreshToken(context.Background(), domain.ClientIdentity{ClientID: "pinned-id", ClientSecret: "pinned-secret"}, "r-old")
	require.NoError(t, err)
	assert.Equal(t, "a2", grant.AccessToken)
	assert.Equal(t, "r-new", grant.RefreshToken)
	assert.Equal(t, time.Unix(1714608000, 0).UTC(), grant.ExpiresAt)
}

func TestRefreshToken_FallsBackToExpiresIn(t *testing.T) {
	h := newTestOAuthHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token_type":"Bearer","access_token":"a2","refresh_token":"r-new","expires_in":3600}`))
	})

	before := time.Now()
	grant, err := h.RefreshToken(context.Background(), domain.ClientIdentity{ClientID: "id", ClientSecret: "s"}, "r-old")
	require.NoError(t, err)
	assert.WithinDuration(t, before.Add(time.Hour), grant.ExpiresAt, 5*time.Second)
}

func TestRefreshToken_ProviderRejects(t *testing.T) {
	body := `{"message":"Bad Request","errors":[{"resource":"RefreshToken","field":"refresh_token","code":"invalid"}]}`
	h := newTestOAuthHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(body))
	})

	_, err := h.RefreshToken(context.Background(), domain.ClientIdentity{ClientID: "id", ClientSecret: "s"}, "revoked")

	var perr *domain.ProviderError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
	assert.Equal(t, body, perr.Body)
	assert.Contains(t, err.Error(), "400")
}
