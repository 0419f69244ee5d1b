package spotify

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultBaseURL = "https://api.spotify.com/v1"
	tokenURL       = "https://accounts.spotify.com/api/token"

	defaultMarket     = "US"
	defaultMaxRetries = 3
	defaultBackoffMs  = 500
	defaultTimeoutSec = 30
)

// Config holds the Spotify adapter settings. ClientID and ClientSecret drive
// the client-credentials flow used for search and recommendations. UserToken
// is an optional user-authorized access token; without it the user endpoints
// (top items, playlist creation) are unavailable.
type Config struct {
	ClientID     string
	ClientSecret string
	UserToken    string

	BaseURL     string
	Market      string
	MaxRetries  int
	BaseBackoff time.Duration
	HTTPTimeout time.Duration
}

// NewConfigFromEnv builds a Config from SPOTIFY_* environment variables.
func NewConfigFromEnv() *Config {
	return &Config{
		ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		UserToken:    os.Getenv("SPOTIFY_USER_TOKEN"),
		BaseURL:      getEnvOrDefault("SPOTIFY_BASE_URL", defaultBaseURL),
		Market:       getEnvOrDefault("SPOTIFY_MARKET", defaultMarket),
		MaxRetries:   getEnvInt("SPOTIFY_MAX_RETRIES", defaultMaxRetries),
		BaseBackoff:  time.Duration(getEnvInt("SPOTIFY_RETRY_BACKOFF_MS", defaultBackoffMs)) * time.Millisecond,
		HTTPTimeout:  time.Duration(getEnvInt("SPOTIFY_HTTP_TIMEOUT", defaultTimeoutSec)) * time.Second,
	}
}

// Validate checks that the credential pair is present.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_ID is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_SECRET is required")
	}
	return nil
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
