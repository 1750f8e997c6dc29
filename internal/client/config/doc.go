// Package config loads runtime configuration for the HireNest client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c, -config or --config.
//  3. Optional .env file in the working directory (does not override
//     variables already present in the environment).
//  4. HIRENEST_* environment variables.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "https://api.hirenest.example",
//	  "request_timeout": "30s",
//	  "upload_timeout": "1m",
//	  "poll_interval": "20s",
//	  "database_dsn": "hirenest.db",
//	  "max_notifications": 100,
//	  "log_level": "info",
//	  "log_backend": "slog",
//	  "log_format": "text"
//	}
//
// Environment durations accept the same string form or a bare number of
// seconds ("45").
package config
