// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; required for the server and migrate commands.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// DisplayTimezone is the IANA zone used to render timestamps at the read
	// boundary (e.g. "Asia/Kolkata"). Storage and comparisons stay UTC.
	DisplayTimezone string `mapstructure:"DISPLAY_TIMEZONE"`
	// DeviceOfflineThreshold is how stale the newest detection may be before
	// the device is reported disconnected (e.g. "5m").
	DeviceOfflineThreshold string `mapstructure:"DEVICE_OFFLINE_THRESHOLD"`
	// CacheTTL is the lifetime of a cached query result (e.g. "30s").
	CacheTTL string `mapstructure:"CACHE_TTL"`
	// DBTimeout bounds every store call so requests cannot hang on a dead database (e.g. "5s").
	DBTimeout string `mapstructure:"DB_TIMEOUT"`
	// OTLPEndpoint is the OTLP collector endpoint (e.g. http://localhost:4317). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DISPLAY_TIMEZONE", "UTC")
	v.SetDefault("DEVICE_OFFLINE_THRESHOLD", "5m")
	v.SetDefault("CACHE_TTL", "30s")
	v.SetDefault("DB_TIMEOUT", "5s")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if _, err := time.LoadLocation(cfg.DisplayTimezone); err != nil {
		return nil, errors.New("config: DISPLAY_TIMEZONE must be a valid IANA zone name")
	}

	return &cfg, nil
}

// OfflineThreshold parses DeviceOfflineThreshold as a time.Duration. Returns 5m if unset or invalid.
func (c *Config) OfflineThreshold() time.Duration {
	d, err := time.ParseDuration(c.DeviceOfflineThreshold)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// CacheTTLDuration parses CacheTTL as a time.Duration. Returns 30s if unset or invalid.
func (c *Config) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// DBTimeoutDuration parses DBTimeout as a time.Duration. Returns 5s if unset or invalid.
func (c *Config) DBTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.DBTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// DisplayLocation returns the parsed display timezone. Falls back to UTC if
// the configured zone is missing or invalid (Load validates it up front).
func (c *Config) DisplayLocation() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
