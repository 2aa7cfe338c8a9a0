// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full process configuration.
type Config struct {
	Port     int
	LogLevel slog.Level

	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	// RedisURL selects the Redis import lock. Empty falls back to Postgres advisory locks.
	RedisURL string

	// EncryptionKey is base64 of 32 bytes, or a passphrase expanded with HKDF.
	EncryptionKey string
	JWTSecret     string

	Provider ProviderConfig

	ImportLockTTL time.Duration
}

// ProviderConfig overrides the activity provider endpoints and limits.
// Empty values keep the connector defaults.
type ProviderConfig struct {
	APIURL            string
	AuthURL           string
	TokenURL          string
	Scopes            []string
	HTTPTimeout       time.Duration
	RequestsPerMinute int
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	// Load .env file if exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnvInt("PORT", 8080),
		LogLevel:          getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		DBConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", time.Minute),
		RedisURL:          os.Getenv("REDIS_URL"),
		EncryptionKey:     os.Getenv("ENCRYPTION_KEY"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		Provider: ProviderConfig{
			APIURL:            os.Getenv("PROVIDER_API_URL"),
			AuthURL:           os.Getenv("PROVIDER_AUTH_URL"),
			TokenURL:          os.Getenv("PROVIDER_TOKEN_URL"),
			Scopes:            getEnvList("PROVIDER_SCOPES"),
			HTTPTimeout:       getEnvDuration("PROVIDER_HTTP_TIMEOUT", 30*time.Second),
			RequestsPerMinute: getEnvInt("PROVIDER_REQUESTS_PER_MINUTE", 0),
		},
		ImportLockTTL: getEnvDuration("IMPORT_LOCK_TTL", 15*time.Minute),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	for name, value := range map[string]string{
		"DATABASE_URL":   c.DatabaseURL,
		"ENCRYPTION_KEY": c.EncryptionKey,
		"JWT_SECRET":     c.JWTSecret,
	} {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}
	if c.Provider.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("PROVIDER_REQUESTS_PER_MINUTE must not be negative"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or whole seconds ("90").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvLevel(key string, defaultValue slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv(key, defaultValue.String()))); err != nil {
		return defaultValue
	}
	return level
}
