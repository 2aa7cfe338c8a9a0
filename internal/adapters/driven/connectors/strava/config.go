package strava

import "time"

// Config contains configuration for the Strava connector.
type Config struct {
	// APIBaseURL is the base URL for the Strava REST API.
	APIBaseURL string

	// AuthURL is the user-facing authorization endpoint.
	AuthURL string

	// TokenURL is the OAuth token endpoint used for code exchange and refresh.
	TokenURL string

	// Scopes requested during authorization. Strava expects them comma separated.
	Scopes []string

	// PerPage is the number of activities requested per page.
	// Strava allows at most 200.
	PerPage int

	// MaxRateLimitAttempts is how many 429 responses are retried before giving up.
	MaxRateLimitAttempts int

	// HTTPTimeout bounds each HTTP request. Backoff sleeps are not included.
	HTTPTimeout time.Duration

	// RequestsPerMinute paces outgoing API requests. Zero disables pacing.
	RequestsPerMinute int
}

// DefaultConfig returns the default Strava connector configuration.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:           "https://www.strava.com/api/v3",
		AuthURL:              "https://www.strava.com/oauth/authorize",
		TokenURL:             "https://www.strava.com/oauth/token",
		Scopes:               []string{"read", "activity:read_all"},
		PerPage:              200,
		MaxRateLimitAttempts: 6,
		HTTPTimeout:          30 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.APIBaseURL == "" {
		out.APIBaseURL = d.APIBaseURL
	}
	if out.AuthURL == "" {
		out.AuthURL = d.AuthURL
	}
	if out.TokenURL == "" {
		out.TokenURL = d.TokenURL
	}
	if len(out.Scopes) == 0 {
		out.Scopes = d.Scopes
	}
	if out.PerPage <= 0 || out.PerPage > d.PerPage {
		out.PerPage = d.PerPage
	}
	if out.MaxRateLimitAttempts <= 0 {
		out.MaxRateLimitAttempts = d.MaxRateLimitAttempts
	}
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = d.HTTPTimeout
	}
	return &out
}
