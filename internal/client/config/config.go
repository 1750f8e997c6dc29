package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds runtime settings for the HireNest client.
//
// Fields:
//   - APIBaseURL: root of the job-board REST API (e.g. https://api.example.com).
//   - RequestTimeout: deadline applied to ordinary API calls.
//   - UploadTimeout: deadline for multipart document uploads; zero means
//     twice RequestTimeout.
//   - PollInterval: period of the background verification watchers.
//   - DatabaseDSN: SQLite file holding notifications and watcher baselines.
//   - MaxNotifications: retention cap for the notification history.
//   - LogLevel, LogBackend, LogFormat: logger selection (slog|zap, text|json).
type Config struct {
	APIBaseURL       string
	RequestTimeout   time.Duration
	UploadTimeout    time.Duration
	PollInterval     time.Duration
	DatabaseDSN      string
	MaxNotifications int
	LogLevel         string
	LogBackend       string
	LogFormat        string
}

var (
	ErrInvalidBaseURL = errors.New("invalid api base url")
	ErrInvalidValue   = errors.New("invalid config value")
)

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8080"
	c.RequestTimeout = 30 * time.Second
	c.UploadTimeout = 0
	c.PollInterval = 20 * time.Second
	c.DatabaseDSN = "hirenest.db"
	c.MaxNotifications = 100
	c.LogLevel = "info"
	c.LogBackend = "slog"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if -c/-config is given), a .env file (if present) and HIRENEST_*
// environment variables. Later sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], ".env")
}

func load(args []string, dotenv string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := loadDotEnv(dotenv); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EffectiveUploadTimeout resolves the zero-means-derived upload timeout.
func (c *Config) EffectiveUploadTimeout() time.Duration {
	if c.UploadTimeout > 0 {
		return c.UploadTimeout
	}
	return 2 * c.RequestTimeout
}

func (c *Config) finalize() error {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.APIBaseURL)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", ErrInvalidValue)
	}
	if c.UploadTimeout < 0 {
		return fmt.Errorf("%w: upload timeout must not be negative", ErrInvalidValue)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidValue)
	}
	if c.MaxNotifications <= 0 {
		return fmt.Errorf("%w: max notifications must be positive", ErrInvalidValue)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("%w: database dsn is empty", ErrInvalidValue)
	}

	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogBackend = strings.ToLower(c.LogBackend)
	c.LogFormat = strings.ToLower(c.LogFormat)

	switch c.LogBackend {
	case "slog", "zap":
	default:
		return fmt.Errorf("%w: log backend %q", ErrInvalidValue, c.LogBackend)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidValue, c.LogFormat)
	}
	return nil
}
