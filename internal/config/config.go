package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all configuration for the client.
type Config struct {
	Env      string
	BaseURL  string
	Token    string
	Username string
	Room     string

	PollInterval time.Duration
	PageSize     int
	HTTPTimeout  time.Duration

	MetricsAddr string // empty disables the metrics endpoint
	LogFile     string
	LogLevel    string
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function and validates it.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, defaultValue string) string {
		if value := getenv(key); value != "" {
			return value
		}
		return defaultValue
	}

	cfg := &Config{
		Env:         get("CLASSCHAT_ENV", "development"),
		BaseURL:     get("CLASSCHAT_BASE_URL", "http://localhost:8080"),
		Token:       getenv("CLASSCHAT_TOKEN"),
		Username:    getenv("CLASSCHAT_USERNAME"),
		Room:        getenv("CLASSCHAT_ROOM"),
		MetricsAddr: getenv("CLASSCHAT_METRICS_ADDR"),
		LogFile:     get("CLASSCHAT_LOG_FILE", "classchat.log"),
		LogLevel:    get("CLASSCHAT_LOG_LEVEL", "info"),
	}

	var err error
	if cfg.PollInterval, err = time.ParseDuration(get("CLASSCHAT_POLL_INTERVAL", "1.5s")); err != nil {
		return nil, fmt.Errorf("CLASSCHAT_POLL_INTERVAL: %w", err)
	}
	if cfg.HTTPTimeout, err = time.ParseDuration(get("CLASSCHAT_HTTP_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("CLASSCHAT_HTTP_TIMEOUT: %w", err)
	}
	if cfg.PageSize, err = strconv.Atoi(get("CLASSCHAT_PAGE_SIZE", "50")); err != nil {
		return nil, fmt.Errorf("CLASSCHAT_PAGE_SIZE: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. Username and Room may still be empty;
// they are prompted for interactively.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("CLASSCHAT_BASE_URL: invalid url %q", c.BaseURL)
	}
	if c.PollInterval < 100*time.Millisecond {
		return fmt.Errorf("CLASSCHAT_POLL_INTERVAL: %s is below 100ms", c.PollInterval)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("CLASSCHAT_HTTP_TIMEOUT: must be positive")
	}
	if c.PageSize < 1 || c.PageSize > 500 {
		return fmt.Errorf("CLASSCHAT_PAGE_SIZE: %d not in range [1, 500]", c.PageSize)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("CLASSCHAT_LOG_LEVEL: %w", err)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
