package strava

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driven"
)

// Ensure OAuthHandler implements the interface.
var _ driven.OAuthHandler = (*OAuthHandler)(nil)

// OAuthHandler handles OAuth operations for Strava.
// Client credentials are sent in the form body, as Strava requires.
type OAuthHandler struct {
	cfg        *Config
	httpClient *http.Client
}

// NewOAuthHandler creates a new Strava OAuth handler.
func NewOAuthHandler(cfg *Config) *OAuthHandler {
	cfg = cfg.withDefaults()
	return &OAuthHandler{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

func (h *OAuthHandler) oauthConfig(clientID, clientSecret, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{strings.Join(h.cfg.Scopes, ",")},
		Endpoint: oauth2.Endpoint{
			AuthURL:   h.cfg.AuthURL,
			TokenURL:  h.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// BuildAuthURL constructs the Strava authorization URL.
func (h *OAuthHandler) BuildAuthURL(creds domain.ProviderCredentials, state string) string {
	cfg := h.oauthConfig(creds.ClientID, creds.ClientSecret, creds.RedirectURI)
	return cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", "auto"))
}

// ExchangeCode exchanges an authorization code for tokens.
func (h *OAuthHandler) ExchangeCode(ctx context.Context, creds domain.ProviderCredentials, code string) (*domain.TokenGrant, error) {
	cfg := h.oauthConfig(creds.ClientID, creds.ClientSecret, creds.RedirectURI)

	tok, err := cfg.Exchange(h.withClient(ctx), code)
	if err != nil {
		return nil, providerError("code exchange", err)
	}
	return grantFrom(tok), nil
}

// RefreshToken exchanges a refresh token for a new access token.
func (h *OAuthHandler) RefreshToken(ctx context.Context, identity domain.ClientIdentity, refreshToken string) (*domain.TokenGrant, error) {
	cfg := h.oauthConfig(identity.ClientID, identity.ClientSecret, "")

	// An already-expired token forces the token source to hit the endpoint.
	expired := &oauth2.Token{RefreshToken: refreshToken, Expiry: time.Now().Add(-time.Hour)}
	tok, err := cfg.TokenSource(h.withClient(ctx), expired).Token()
	if err != nil {
		return nil, providerError("token refresh", err)
	}
	return grantFrom(tok), nil
}

func (h *OAuthHandler) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, h.httpClient)
}

// grantFrom prefers Strava's absolute expires_at over the relative expires_in.
func grantFrom(tok *oauth2.Token) *domain.TokenGrant {
	grant := &domain.TokenGrant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	if v, ok := tok.Extra("expires_at").(float64); ok && v > 0 {
		grant.ExpiresAt = time.Unix(int64(v), 0).UTC()
	}
	return grant
}

// providerError surfaces the token endpoint's status and body verbatim.
func providerError(op string, err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.Response != nil {
		return &domain.ProviderError{Op: op, StatusCode: rerr.Response.StatusCode, Body: string(rerr.Body)}
	}
	return fmt.Errorf("%s: %w", op, err)
}
