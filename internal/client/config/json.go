package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/hirenest/internal/flagx"
	"github.com/dmitrijs2005/hirenest/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// Durations go through timex.Duration so a file may say "30s" or give
// integer nanoseconds. Pointer fields distinguish "absent" from zero.
type JsonConfig struct {
	APIBaseURL       string          `json:"api_base_url"`
	RequestTimeout   *timex.Duration `json:"request_timeout"`
	UploadTimeout    *timex.Duration `json:"upload_timeout"`
	PollInterval     *timex.Duration `json:"poll_interval"`
	DatabaseDSN      string          `json:"database_dsn"`
	MaxNotifications *int            `json:"max_notifications"`
	LogLevel         string          `json:"log_level"`
	LogBackend       string          `json:"log_backend"`
	LogFormat        string          `json:"log_format"`
}

// parseJSON overlays cfg with the JSON file named by -c/-config in args.
// No flag means no JSON stage.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	jc.apply(cfg)
	return nil
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogBackend, jc.LogBackend)
	setString(&cfg.LogFormat, jc.LogFormat)

	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.UploadTimeout != nil {
		cfg.UploadTimeout = jc.UploadTimeout.Duration
	}
	if jc.PollInterval != nil {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.MaxNotifications != nil {
		cfg.MaxNotifications = *jc.MaxNotifications
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
