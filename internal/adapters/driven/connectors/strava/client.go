// Package strava implements the provider adapters for the Strava API:
// the rate-limited activity fetcher and the OAuth handler.
package strava

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driven"
	"github.com/custodia-labs/stride-sync/internal/observability"
)

// Verify interface compliance
var _ driven.ActivityFetcher = (*Client)(nil)

// minBackoff is the floor for every rate-limit wait.
const minBackoff = time.Second

// SleepFunc waits for d. Implementations should return early with an
// error if ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Client fetches activity pages from the Strava API.
type Client struct {
	cfg        *Config
	httpClient *http.Client
	limiter    *rate.Limiter
	sleep      SleepFunc
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSleep overrides how backoff waits are performed.
func WithSleep(sleep SleepFunc) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Strava API client.
func NewClient(cfg *Config, opts ...Option) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		sleep:      sleepContext,
		logger:     slog.Default(),
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPage lists one page of the athlete's activities.
func (c *Client) FetchPage(ctx context.Context, accessToken string, page int) ([]domain.RawActivity, error) {
	params := url.Values{
		"per_page": {strconv.Itoa(c.cfg.PerPage)},
		"page":     {strconv.Itoa(page)},
	}
	endpoint := strings.TrimSuffix(c.cfg.APIBaseURL, "/") + "/athlete/activities?" + params.Encode()

	resp, err := c.doRequest(ctx, accessToken, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var activities []domain.RawActivity
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return nil, fmt.Errorf("decode activities page %d: %w", page, err)
	}
	return activities, nil
}

// doRequest performs a GET with bearer auth, retrying 429 responses with
// backoff until MaxRateLimitAttempts is spent. Any other non-2xx status is
// returned as *domain.ProviderError.
func (c *Client) doRequest(ctx context.Context, accessToken, endpoint string) (*http.Response, error) {
	token := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}

	var lastWait time.Duration
	for attempt := 0; ; attempt++ {
		if attempt >= c.cfg.MaxRateLimitAttempts {
			return nil, &domain.RateLimitExceededError{Attempts: attempt, LastWait: lastWait}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("wait for request slot: %w", err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		token.SetAuthHeader(req)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("do request: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			lastWait = BackoffWait(attempt, retryAfter)
			observability.RecordRateLimited()
			c.logger.Warn("provider rate limited, backing off",
				"attempt", attempt,
				"retry_after_s", retryAfter,
				"retry_after_ms", lastWait.Milliseconds(),
			)

			if err := c.sleep(ctx, lastWait); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, &domain.ProviderError{Op: "list activities", StatusCode: resp.StatusCode, Body: string(body)}
		}

		return resp, nil
	}
}

// BackoffWait returns max(1s, retryAfter + 2^attempt * 500ms).
func BackoffWait(attempt, retryAfterSeconds int) time.Duration {
	ms := float64(retryAfterSeconds)*1000 + math.Pow(2, float64(attempt))*500
	wait := time.Duration(ms) * time.Millisecond
	if wait < minBackoff {
		return minBackoff
	}
	return wait
}

// parseRetryAfter reads delta-seconds. Missing, negative or non-numeric values are 0.
func parseRetryAfter(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
