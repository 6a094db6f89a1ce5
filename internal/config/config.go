// Package config handles application configuration loading. Values come
// from built-in defaults, an optional config file (YAML, TOML, or JSON), and
// environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"folio/internal/database"
)

// Config holds all application configuration values.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	S3        S3Config        `mapstructure:"s3"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Env             string        `mapstructure:"env"` // "development", "production", "testing"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or text
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`      // "sqlite" or "postgres"
	URL        string `mapstructure:"url"`         // full DSN, overrides everything else
	SQLitePath string `mapstructure:"sqlite_path"` // database file when driver is sqlite
}

// PostgresConfig holds the PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"db"`
}

// ValkeyConfig holds the Valkey (Redis-compatible) connection settings.
type ValkeyConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
}

// S3Config holds the object storage settings for author avatars. Storage
// is disabled when the endpoint or credentials are empty.
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	PublicURL string `mapstructure:"public_url"`
}

// CORSConfig holds cross-origin settings. Origins is a comma-separated list;
// "*" allows every origin.
type CORSConfig struct {
	Origins string `mapstructure:"origins"`
}

// RateLimitConfig holds the write-route rate limiter settings.
type RateLimitConfig struct {
	Backend  string        `mapstructure:"backend"` // "memory" or "valkey"
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.host":             "APP_HOST",
	"server.port":             "APP_PORT",
	"server.env":              "APP_ENV",
	"server.read_timeout":     "APP_READ_TIMEOUT",
	"server.write_timeout":    "APP_WRITE_TIMEOUT",
	"server.idle_timeout":     "APP_IDLE_TIMEOUT",
	"server.shutdown_timeout": "APP_SHUTDOWN_TIMEOUT",
	"log.level":               "LOG_LEVEL",
	"log.format":              "LOG_FORMAT",
	"database.driver":         "DB_DRIVER",
	"database.url":            "DB_URL",
	"database.sqlite_path":    "SQLITE_PATH",
	"postgres.host":           "POSTGRES_HOST",
	"postgres.port":           "POSTGRES_PORT",
	"postgres.user":           "POSTGRES_USER",
	"postgres.password":       "POSTGRES_PASSWORD",
	"postgres.db":             "POSTGRES_DB",
	"valkey.host":             "VALKEY_HOST",
	"valkey.port":             "VALKEY_PORT",
	"valkey.password":         "VALKEY_PASSWORD",
	"s3.endpoint":             "S3_ENDPOINT",
	"s3.region":               "S3_REGION",
	"s3.access_key":           "S3_ACCESS_KEY",
	"s3.secret_key":           "S3_SECRET_KEY",
	"s3.bucket":               "S3_BUCKET",
	"s3.public_url":           "S3_PUBLIC_URL",
	"cors.origins":            "CORS_ORIGINS",
	"rate_limit.backend":      "RATE_LIMIT_BACKEND",
	"rate_limit.requests":     "RATE_LIMIT_REQUESTS",
	"rate_limit.window":       "RATE_LIMIT_WINDOW",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("database.driver", database.DriverSQLite)
	v.SetDefault("database.url", "")
	v.SetDefault("database.sqlite_path", "database/db.sqlite3")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "folio")
	v.SetDefault("postgres.password", "changeme")
	v.SetDefault("postgres.db", "folio")

	v.SetDefault("valkey.host", "localhost")
	v.SetDefault("valkey.port", "6379")
	v.SetDefault("valkey.password", "")

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "fsn1")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.bucket", "folio-public")
	v.SetDefault("s3.public_url", "")

	v.SetDefault("cors.origins", "*")

	v.SetDefault("rate_limit.backend", "memory")
	v.SetDefault("rate_limit.requests", 60)
	v.SetDefault("rate_limit.window", "1m")
}

// Load reads configuration from configPath (optional) and the environment,
// applying development defaults where appropriate. Returns an error if the
// file cannot be parsed or a value is invalid.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configPath, err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q",
			database.DriverSQLite, database.DriverPostgres, c.Database.Driver)
	}

	switch c.RateLimit.Backend {
	case "memory", "valkey":
	default:
		return fmt.Errorf("RATE_LIMIT_BACKEND must be \"memory\" or \"valkey\", got %q", c.RateLimit.Backend)
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}

	if c.Server.Env == "production" && c.usesPostgresSettings() && c.Postgres.Password == "changeme" {
		return errors.New("POSTGRES_PASSWORD must be set in production")
	}
	return nil
}

// usesPostgresSettings reports whether the DSN is built from the POSTGRES_*
// values rather than given whole in DB_URL.
func (c *Config) usesPostgresSettings() bool {
	return c.Database.Driver == database.DriverPostgres && c.Database.URL == ""
}

// DSN returns the connection string for the configured driver. DB_URL wins
// when set.
func (c *Config) DSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	if c.Database.Driver == database.DriverSQLite {
		return database.SQLiteDSN(c.Database.SQLitePath)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Postgres.User, c.Postgres.Password),
		Host:     c.Postgres.Host + ":" + c.Postgres.Port,
		Path:     "/" + c.Postgres.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Server.Env == "development"
}

// AllowedOrigins splits the CORS origin list, dropping blanks.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORS.Origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SetupLogger creates a logger writing to w with the configured level and
// format. Unknown levels fall back to info, unknown formats to JSON.
func SetupLogger(cfg LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}
