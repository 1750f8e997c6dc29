package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables recognised by parseEnv.
const (
	EnvAPIBaseURL       = "HIRENEST_API_BASE_URL"
	EnvRequestTimeout   = "HIRENEST_REQUEST_TIMEOUT"
	EnvUploadTimeout    = "HIRENEST_UPLOAD_TIMEOUT"
	EnvPollInterval     = "HIRENEST_POLL_INTERVAL"
	EnvDatabaseDSN      = "HIRENEST_DATABASE_DSN"
	EnvMaxNotifications = "HIRENEST_MAX_NOTIFICATIONS"
	EnvLogLevel         = "HIRENEST_LOG_LEVEL"
	EnvLogBackend       = "HIRENEST_LOG_BACKEND"
	EnvLogFormat        = "HIRENEST_LOG_FORMAT"
)

// loadDotEnv copies variables from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// parseEnv overlays cfg with HIRENEST_* variables.
func parseEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvAPIBaseURL); ok && v != "" {
		cfg.APIBaseURL = v
	}
	if v, ok := os.LookupEnv(EnvDatabaseDSN); ok && v != "" {
		cfg.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvLogBackend); ok && v != "" {
		cfg.LogBackend = v
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok && v != "" {
		cfg.LogFormat = v
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{EnvRequestTimeout, &cfg.RequestTimeout},
		{EnvUploadTimeout, &cfg.UploadTimeout},
		{EnvPollInterval, &cfg.PollInterval},
	}
	for _, d := range durations {
		v, ok := os.LookupEnv(d.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidValue, d.key, v)
		}
		*d.dst = parsed
	}

	if v, ok := os.LookupEnv(EnvMaxNotifications); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidValue, EnvMaxNotifications, v)
		}
		cfg.MaxNotifications = n
	}
	return nil
}

// parseDuration accepts Go duration syntax ("30s", "1m") or a bare number
// of seconds.
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(v)
}
