// Package config loads the widget service configuration from the
// environment, optionally seeded from a .env file.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/matzehuels/stackbar/pkg/cache"
	"github.com/matzehuels/stackbar/pkg/errors"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds all service configuration.
type Config struct {
	Server    ServerConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// PublicURL prefixes the widget and event links handed to hosts. Empty
	// means links are relative to the request host.
	PublicURL string
}

// CacheConfig selects the backend for chart handles and layouts.
type CacheConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ChartTTL      time.Duration
}

// RateLimitConfig holds per-client rate limiting configuration.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
}

// CORSConfig holds allowed origins for the API.
type CORSConfig struct {
	AllowedOrigins []string
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string // debug, info, warn, error
}

// Load reads envFiles (or ./.env when none are given and it exists) into
// the process environment without overriding variables already set, then
// builds and validates the configuration.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !isNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read .env")
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", strings.Join(envFiles, ", "))
	}

	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a configuration from lookup without validating it.
// Malformed values are reported together.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	e := &env{lookup: lookup}

	cfg := &Config{
		Server: ServerConfig{
			Addr:            e.str("STACKBAR_ADDR", ":8080"),
			ReadTimeout:     e.duration("STACKBAR_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    e.duration("STACKBAR_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     e.duration("STACKBAR_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: e.duration("STACKBAR_SHUTDOWN_TIMEOUT", 10*time.Second),
			PublicURL:       strings.TrimRight(e.str("STACKBAR_PUBLIC_URL", ""), "/"),
		},
		Cache: CacheConfig{
			Backend:       strings.ToLower(e.str("STACKBAR_CACHE", CacheMemory)),
			RedisAddr:     e.str("STACKBAR_REDIS_ADDR", "localhost:6379"),
			RedisPassword: e.str("STACKBAR_REDIS_PASSWORD", ""),
			RedisDB:       e.int("STACKBAR_REDIS_DB", 0),
			ChartTTL:      e.duration("STACKBAR_CHART_TTL", cache.ChartTTL),
		},
		RateLimit: RateLimitConfig{
			Enabled:           e.bool("STACKBAR_RATE_LIMIT", true),
			RequestsPerSecond: e.float("STACKBAR_RATE_RPS", 10),
			BurstSize:         e.int("STACKBAR_RATE_BURST", 20),
		},
		CORS: CORSConfig{
			AllowedOrigins: e.list("STACKBAR_CORS_ORIGINS", []string{"*"}),
		},
		Logging: LoggingConfig{
			Level: strings.ToLower(e.str("STACKBAR_LOG_LEVEL", "info")),
		},
	}

	if len(e.errs) > 0 {
		return nil, configError(e.errs)
	}
	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Addr == "" {
		errs = append(errs, "STACKBAR_ADDR must not be empty")
	}
	timeouts := []struct {
		name string
		d    time.Duration
	}{
		{"STACKBAR_READ_TIMEOUT", c.Server.ReadTimeout},
		{"STACKBAR_WRITE_TIMEOUT", c.Server.WriteTimeout},
		{"STACKBAR_IDLE_TIMEOUT", c.Server.IdleTimeout},
		{"STACKBAR_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout},
	}
	for _, t := range timeouts {
		if t.d <= 0 {
			errs = append(errs, t.name+" must be positive")
		}
	}

	switch c.Cache.Backend {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			errs = append(errs, "STACKBAR_REDIS_ADDR is required for the redis cache")
		}
	default:
		errs = append(errs, fmt.Sprintf("STACKBAR_CACHE must be memory, redis or none, got %q", c.Cache.Backend))
	}
	if c.Cache.ChartTTL <= 0 {
		errs = append(errs, "STACKBAR_CHART_TTL must be positive")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, "STACKBAR_RATE_RPS must be positive")
		}
		if c.RateLimit.BurstSize < 1 {
			errs = append(errs, "STACKBAR_RATE_BURST must be at least 1")
		}
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		errs = append(errs, "STACKBAR_CORS_ORIGINS must name at least one origin")
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Sprintf("STACKBAR_LOG_LEVEL %q is not a log level", c.Logging.Level))
	}

	if len(errs) > 0 {
		return configError(errs)
	}
	return nil
}

// LogLevel returns the parsed log level, defaulting to info.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Logging.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// String returns a redacted representation safe for logging.
func (c *Config) String() string {
	redis := ""
	if c.Cache.Backend == CacheRedis {
		redis = " redis=" + c.Cache.RedisAddr
		if c.Cache.RedisPassword != "" {
			redis += " password=[REDACTED]"
		}
	}
	return fmt.Sprintf("Config{addr=%s cache=%s%s chart_ttl=%s rate_limit=%v cors=%v}",
		c.Server.Addr, c.Cache.Backend, redis, c.Cache.ChartTTL, c.RateLimit.Enabled, c.CORS.AllowedOrigins)
}

func configError(errs []string) error {
	return errors.New(errors.ErrCodeInvalidInput, "configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
}

func isNotExist(err error) bool {
	return stderrors.Is(err, fs.ErrNotExist)
}

// env reads typed values and collects parse failures.
type env struct {
	lookup func(string) (string, bool)
	errs   []string
}

func (e *env) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *env) fail(key, value, kind string) {
	e.errs = append(e.errs, fmt.Sprintf("%s=%q is not a valid %s", key, value, kind))
}

func (e *env) str(key, def string) string {
	if v, ok := e.get(key); ok {
		return v
	}
	return def
}

func (e *env) int(key string, def int) int {
	v, ok := e.get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, "integer")
		return def
	}
	return n
}

func (e *env) float(key string, def float64) float64 {
	v, ok := e.get(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, "number")
		return def
	}
	return f
}

func (e *env) bool(key string, def bool) bool {
	v, ok := e.get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, "boolean")
		return def
	}
	return b
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v, ok := e.get(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, "duration")
		return def
	}
	return d
}

func (e *env) list(key string, def []string) []string {
	v, ok := e.get(key)
	if !ok {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
