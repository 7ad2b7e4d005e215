// Package config loads the import server's settings from environment
// variables, applies defaults and validates the result at startup.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds the wait for running imports on shutdown.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings. Without a URL the
// server keeps everything in memory.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Migrate creates the schema on startup.
	Migrate bool `env:"DB_MIGRATE" default:"true"`
}

// UploadConfig holds limits for uploaded files and import sessions.
type UploadConfig struct {
	// MaxFileSize accepts plain bytes or a KB/MB/GB suffix.
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"20MB" unit:"bytes"`

	MaxConcurrent int           `env:"UPLOAD_MAX_CONCURRENT" default:"4"`
	MaxWaitTime   time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"10s"`

	// Timeout bounds a single parse or commit.
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"2m"`

	// SessionTTL is how long an untouched import session is kept.
	SessionTTL  time.Duration `env:"UPLOAD_SESSION_TTL" default:"30m"`
	MaxSessions int           `env:"UPLOAD_MAX_SESSIONS" default:"100"`
}

// ImportConfig selects the rule set and the duplicate policy.
type ImportConfig struct {
	// Locale picks a registered rule set, e.g. "it" or "en".
	Locale string `env:"IMPORT_LOCALE" default:"it"`

	// RulesFile is a YAML rule set that replaces the registered one.
	RulesFile string `env:"IMPORT_RULES_FILE"`

	// DedupMatchAmount adds the amount to the duplicate key.
	DedupMatchAmount bool `env:"IMPORT_DEDUP_MATCH_AMOUNT" default:"false"`
}

// RateLimitConfig holds per-IP rate limits.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json.
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// UsesDatabase reports whether a PostgreSQL URL is configured.
func (c *DatabaseConfig) UsesDatabase() bool {
	return c.URL != ""
}
