// Package config loads application settings from the environment and
// optional .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

const Production = "production"

// DefaultEnvFiles are loaded, when present, before reading the environment.
// Variables already set in the process win.
var DefaultEnvFiles = []string{".env", ".env.local"}

type ListOptions struct {
	PageSize     int    `env:"LIST_PAGE_SIZE" envDefault:"10"`
	MaxPageSize  int    `env:"LIST_MAX_PAGE_SIZE" envDefault:"100"`
	StrictPaging bool   `env:"LIST_STRICT_PAGING" envDefault:"false"`
	Locale       string `env:"LIST_LOCALE" envDefault:"en"`
	Currency     string `env:"LIST_CURRENCY" envDefault:"USD"`
}

// Tag returns the collation locale.
func (o ListOptions) Tag() language.Tag {
	tag, err := language.Parse(o.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

type DataOptions struct {
	Dir   string `env:"DATA_DIR"`
	Watch bool   `env:"DATA_WATCH" envDefault:"false"`
}

type DatabaseOptions struct {
	URL    string `env:"DATABASE_URL"`
	Tables string `env:"DATABASE_TABLES"` // screen=table,...
	Scopes string `env:"DATABASE_SCOPES"` // screen=field:op:value;...
	// NotifyChannel enables reloads on NOTIFY <channel>, '<screen>'.
	NotifyChannel string `env:"DATABASE_NOTIFY_CHANNEL"`
}

type SQLiteOptions struct {
	Path   string `env:"SQLITE_PATH"`
	Tables string `env:"SQLITE_TABLES"`
}

type HTTPOptions struct {
	Port            int           `env:"APP_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins     []string      `env:"HTTP_CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	// RateLimit uses the ulule/limiter formatted rate ("100-M"); empty disables it.
	RateLimit string `env:"HTTP_RATE_LIMIT" envDefault:"600-M"`
}

type TelemetryOptions struct {
	// Endpoint of an OTLP/HTTP collector; tracing stays no-op when empty.
	Endpoint       string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName    string `env:"OTEL_SERVICE_NAME" envDefault:"peopledesk"`
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
}

type Config struct {
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	List      ListOptions
	Data      DataOptions
	Database  DatabaseOptions
	SQLite    SQLiteOptions
	HTTP      HTTPOptions
	Telemetry TelemetryOptions
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool { return c.AppEnv == Production }

// Validate checks values env parsing cannot.
func (c *Config) Validate() error {
	var errs []error
	if c.List.PageSize < 1 {
		errs = append(errs, fmt.Errorf("LIST_PAGE_SIZE must be positive, got %d", c.List.PageSize))
	}
	if c.List.MaxPageSize < c.List.PageSize {
		errs = append(errs, fmt.Errorf("LIST_MAX_PAGE_SIZE (%d) must be at least LIST_PAGE_SIZE (%d)",
			c.List.MaxPageSize, c.List.PageSize))
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT out of range: %d", c.HTTP.Port))
	}
	if c.Database.Tables != "" && c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_TABLES requires DATABASE_URL"))
	}
	if c.SQLite.Tables != "" && c.SQLite.Path == "" {
		errs = append(errs, errors.New("SQLITE_TABLES requires SQLITE_PATH"))
	}
	if c.Data.Watch && c.Data.Dir == "" {
		errs = append(errs, errors.New("DATA_WATCH requires DATA_DIR"))
	}
	return errors.Join(errs...)
}

// LoadEnv loads the env files that exist and returns how many were found.
func LoadEnv(files []string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if st, err := os.Stat(f); err == nil && !st.IsDir() {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads env files, then the environment, and validates the result.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = DefaultEnvFiles
	}
	if _, err := LoadEnv(files); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
