package mocks

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

// MockOAuthHandler is a mock implementation of OAuthHandler for testing.
// By default refreshes succeed with numbered tokens valid for six hours.
type MockOAuthHandler struct {
	mu        sync.Mutex
	refreshes []domain.ClientIdentity
	exchanges []string
	Now       func() time.Time

	// Optional hooks
	RefreshFn  func(identity domain.ClientIdentity, refreshToken string) (*domain.TokenGrant, error)
	ExchangeFn func(creds domain.ProviderCredentials, code string) (*domain.TokenGrant, error)
}

// NewMockOAuthHandler creates a new MockOAuthHandler
func NewMockOAuthHandler() *MockOAuthHandler {
	return &MockOAuthHandler{Now: time.Now}
}

func (m *MockOAuthHandler) BuildAuthURL(creds domain.ProviderCredentials, state string) string {
	q := url.Values{}
	q.Set("client_id", creds.ClientID)
	q.Set("redirect_uri", creds.RedirectURI)
	q.Set("state", state)
	return "https://provider.test/oauth/authorize?" + q.Encode()
}

func (m *MockOAuthHandler) ExchangeCode(ctx context.Context, creds domain.ProviderCredentials, code string) (*domain.TokenGrant, error) {
	m.mu.Lock()
	m.exchanges = append(m.exchanges, code)
	m.mu.Unlock()
	if m.ExchangeFn != nil {
		return m.ExchangeFn(creds, code)
	}
	return &domain.TokenGrant{
		AccessToken:  "access-" + code,
		RefreshToken: "refresh-" + code,
		ExpiresAt:    m.Now().Add(6 * time.Hour),
	}, nil
}

func (m *MockOAuthHandler) RefreshToken(ctx context.Context, identity domain.ClientIdentity, refreshToken string) (*domain.TokenGrant, error) {
	m.mu.Lock()
	m.refreshes = append(m.refreshes, identity)
	n := len(m.refreshes)
	m.mu.Unlock()
	if m.RefreshFn != nil {
		return m.RefreshFn(identity, refreshToken)
	}
	return &domain.TokenGrant{
		AccessToken:  fmt.Sprintf("access-%d", n),
		RefreshToken: fmt.Sprintf("refresh-%d", n),
		ExpiresAt:    m.Now().Add(6 * time.Hour),
	}, nil
}

// RefreshCalls returns the identities used for each refresh, in order.
func (m *MockOAuthHandler) RefreshCalls() []domain.ClientIdentity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ClientIdentity(nil), m.refreshes...)
}

// ExchangeCalls returns the codes exchanged, in order.
func (m *MockOAuthHandler) ExchangeCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.exchanges...)
}

// FetchCall records one FetchPage invocation.
type FetchCall struct {
	AccessToken string
	Page        int
}

// MockActivityFetcher is a mock implementation of ActivityFetcher for testing.
// Pages are served from an in-memory list; pages past the end are empty.
type MockActivityFetcher struct {
	mu    sync.Mutex
	pages [][]domain.RawActivity
	calls []FetchCall

	// Optional hooks
	FetchFn func(accessToken string, page int) ([]domain.RawActivity, error)
}

// NewMockActivityFetcher creates a fetcher serving the given pages in order.
func NewMockActivityFetcher(pages ...[]domain.RawActivity) *MockActivityFetcher {
	return &MockActivityFetcher{pages: pages}
}

func (m *MockActivityFetcher) FetchPage(ctx context.Context, accessToken string, page int) ([]domain.RawActivity, error) {
	m.mu.Lock()
	m.calls = append(m.calls, FetchCall{AccessToken: accessToken, Page: page})
	m.mu.Unlock()
	if m.FetchFn != nil {
		return m.FetchFn(accessToken, page)
	}
	return m.Page(page), nil
}

// Page returns configured page n (1-based), or nil past the end.
func (m *MockActivityFetcher) Page(n int) []domain.RawActivity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n < 1 || n > len(m.pages) {
		return nil
	}
	return m.pages[n-1]
}

// Calls returns all recorded FetchPage calls.
func (m *MockActivityFetcher) Calls() []FetchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FetchCall(nil), m.calls...)
}

// RawActivities builds n minimal raw runs with ids starting at firstID.
func RawActivities(firstID int64, n int) []domain.RawActivity {
	out := make([]domain.RawActivity, n)
	for i := range out {
		distance := 5000.0
		moving := 1500
		speed := distance / float64(moving)
		out[i] = domain.RawActivity{
			ID:           firstID + int64(i),
			Name:         fmt.Sprintf("Run %d", firstID+int64(i)),
			Type:         "Run",
			SportType:    "Run",
			StartDate:    time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC).Add(time.Duration(i) * 24 * time.Hour),
			Distance:     &distance,
			MovingTime:   &moving,
			ElapsedTime:  &moving,
			AverageSpeed: &speed,
		}
	}
	return out
}
