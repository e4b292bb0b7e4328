// Package config loads the application configuration with viper:
// built-in defaults, then an optional guacamaya.yaml, then environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	pkgconfig "guacamaya/internal/pkg/config"
)

// Device storage backends.
const (
	DeviceStoreSQLite = "sqlite"
	DeviceStoreRedis  = "redis"
)

// AppConfig holds process-wide settings.
type AppConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// DatabaseConfig configures the remote articles table.
type DatabaseConfig struct {
	// URL is a Postgres connection string. Empty means the fallback dataset only.
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
	// Breaker guards the connection pool; Interval and Timeout feed gobreaker.
	Breaker BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig tunes the circuit breaker around the article repository.
type BreakerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxRequests uint32        `mapstructure:"max_requests"`
	Interval    time.Duration `mapstructure:"interval"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// RefreshPerMinute caps POST /articles/refresh; RefreshBurst is the bucket size.
	RefreshPerMinute int `mapstructure:"refresh_per_minute"`
	RefreshBurst     int `mapstructure:"refresh_burst"`
	// CORSOrigins lists browser origins allowed to call the API. Empty disables CORS.
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// FeedConfig configures synchronization and search.
type FeedConfig struct {
	ResyncSchedule string        `mapstructure:"resync_schedule"`
	ResyncTimeout  time.Duration `mapstructure:"resync_timeout"`
	Timezone       string        `mapstructure:"timezone"`
	SearchDebounce time.Duration `mapstructure:"search_debounce"`
	// FallbackFile replaces the bundled dataset when set.
	FallbackFile string `mapstructure:"fallback_file"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// DeviceConfig selects where the demo user is stored.
type DeviceConfig struct {
	Store string      `mapstructure:"store"`
	Path  string      `mapstructure:"path"`
	Redis RedisConfig `mapstructure:"redis"`
}

// TracingConfig configures span sampling.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// Config is the top-level configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Device   DeviceConfig   `mapstructure:"device"`
	Tracing  TracingConfig  `mapstructure:"tracing"`

	// Warnings lists the values that were replaced by their defaults.
	Warnings []string `mapstructure:"-"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"app.log_level":              "LOG_LEVEL",
	"app.log_format":             "LOG_FORMAT",
	"database.url":               "DATABASE_URL",
	"database.max_open_conns":    "DB_MAX_OPEN_CONNS",
	"database.max_idle_conns":    "DB_MAX_IDLE_CONNS",
	"database.conn_max_lifetime": "DB_CONN_MAX_LIFETIME",
	"database.query_timeout":     "DB_QUERY_TIMEOUT",
	"database.breaker.enabled":   "DB_BREAKER_ENABLED",
	"http.addr":                  "HTTP_ADDR",
	"http.shutdown_timeout":      "HTTP_SHUTDOWN_TIMEOUT",
	"http.refresh_per_minute":    "REFRESH_RATE_PER_MIN",
	"http.refresh_burst":         "REFRESH_BURST",
	"http.cors_origins":          "CORS_ALLOWED_ORIGINS",
	"feed.resync_schedule":       "RESYNC_SCHEDULE",
	"feed.resync_timeout":        "RESYNC_TIMEOUT",
	"feed.timezone":              "RESYNC_TIMEZONE",
	"feed.search_debounce":       "SEARCH_DEBOUNCE",
	"feed.fallback_file":         "FALLBACK_FILE",
	"device.store":               "DEVICE_STORE",
	"device.path":                "DEVICE_STORE_PATH",
	"device.redis.addr":          "REDIS_ADDR",
	"device.redis.password":      "REDIS_PASSWORD",
	"device.redis.db":            "REDIS_DB",
	"device.redis.prefix":        "REDIS_PREFIX",
	"tracing.enabled":            "TRACING_ENABLED",
	"tracing.sample_ratio":       "TRACING_SAMPLE_RATIO",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.query_timeout", 10*time.Second)
	v.SetDefault("database.breaker.enabled", true)
	v.SetDefault("database.breaker.max_requests", 3)
	v.SetDefault("database.breaker.interval", time.Minute)
	v.SetDefault("database.breaker.timeout", 30*time.Second)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.refresh_per_minute", 6)
	v.SetDefault("http.refresh_burst", 2)

	v.SetDefault("feed.resync_schedule", DefaultResyncSchedule)
	v.SetDefault("feed.resync_timeout", 30*time.Second)
	v.SetDefault("feed.timezone", "UTC")
	v.SetDefault("feed.search_debounce", DefaultSearchDebounce)

	v.SetDefault("device.store", DeviceStoreSQLite)
	v.SetDefault("device.path", "guacamaya-device.db")
	v.SetDefault("device.redis.addr", "127.0.0.1:6379")
	v.SetDefault("device.redis.prefix", "guacamaya:")

	v.SetDefault("tracing.enabled", true)
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// Defaults mirrored here so callers need not import the feed packages.
const (
	DefaultResyncSchedule = "@every 15m"
	DefaultSearchDebounce = 220 * time.Millisecond
)

var (
	metricsOnce sync.Once
	loadMetrics *pkgconfig.ConfigMetrics
)

func configMetrics() *pkgconfig.ConfigMetrics {
	metricsOnce.Do(func() { loadMetrics = pkgconfig.NewConfigMetrics("guacamaya") })
	return loadMetrics
}

// Load reads the configuration. path names an explicit config file; when
// empty, guacamaya.yaml is looked up in the working directory and
// $HOME/.config/guacamaya, and its absence is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("guacamaya")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/guacamaya")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		slog.Debug("config file loaded", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyFallbacks()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	m := configMetrics()
	m.RecordLoadTimestamp()
	m.SetFallbackActive(len(cfg.Warnings) > 0)
	return cfg, nil
}

// applyFallbacks replaces invalid tuning values with their defaults and
// records a warning for each. Values that change what the program talks to
// are never replaced; Validate rejects them instead.
func (c *Config) applyFallbacks() {
	m := configMetrics()
	fallback := func(field, value string, err error, def string) {
		m.RecordValidationError(field)
		m.RecordFallback(field)
		c.Warnings = append(c.Warnings,
			fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%s'", field, value, err, def))
	}

	if err := pkgconfig.ValidateCronSchedule(c.Feed.ResyncSchedule); err != nil {
		fallback("resync_schedule", c.Feed.ResyncSchedule, err, DefaultResyncSchedule)
		c.Feed.ResyncSchedule = DefaultResyncSchedule
	}
	if err := pkgconfig.ValidateTimezone(c.Feed.Timezone); err != nil {
		fallback("timezone", c.Feed.Timezone, err, "UTC")
		c.Feed.Timezone = "UTC"
	}
	if err := pkgconfig.ValidateDuration(c.Feed.SearchDebounce, 0, 5*time.Second); err != nil {
		fallback("search_debounce", c.Feed.SearchDebounce.String(), err, DefaultSearchDebounce.String())
		c.Feed.SearchDebounce = DefaultSearchDebounce
	}
	if err := pkgconfig.ValidatePositiveDuration(c.Feed.ResyncTimeout); err != nil {
		fallback("resync_timeout", c.Feed.ResyncTimeout.String(), err, "30s")
		c.Feed.ResyncTimeout = 30 * time.Second
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		fallback("tracing_sample_ratio", fmt.Sprint(c.Tracing.SampleRatio),
			errors.New("must be between 0 and 1"), "1")
		c.Tracing.SampleRatio = 1
	}
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	m := configMetrics()
	check := func(field string, err error) error {
		if err != nil {
			m.RecordValidationError(field)
			return fmt.Errorf("config %s: %w", field, err)
		}
		return nil
	}

	if err := check("device.store", pkgconfig.ValidateOneOf(c.Device.Store, DeviceStoreSQLite, DeviceStoreRedis)); err != nil {
		return err
	}
	if c.Device.Store == DeviceStoreSQLite && strings.TrimSpace(c.Device.Path) == "" {
		return check("device.path", errors.New("required for the sqlite store"))
	}
	if c.Device.Store == DeviceStoreRedis && strings.TrimSpace(c.Device.Redis.Addr) == "" {
		return check("device.redis.addr", errors.New("required for the redis store"))
	}
	if err := check("http.refresh_per_minute", pkgconfig.ValidateIntRange(c.HTTP.RefreshPerMinute, 1, 600)); err != nil {
		return err
	}
	if err := check("http.refresh_burst", pkgconfig.ValidateIntRange(c.HTTP.RefreshBurst, 1, 100)); err != nil {
		return err
	}
	for _, origin := range c.HTTP.CORSOrigins {
		if err := check("http.cors_origins", pkgconfig.ValidateOrigin(origin)); err != nil {
			return err
		}
	}
	if err := check("database.max_open_conns", pkgconfig.ValidateIntRange(c.Database.MaxOpenConns, 1, 200)); err != nil {
		return err
	}
	if err := check("database.query_timeout", pkgconfig.ValidatePositiveDuration(c.Database.QueryTimeout)); err != nil {
		return err
	}
	if err := check("http.shutdown_timeout", pkgconfig.ValidatePositiveDuration(c.HTTP.ShutdownTimeout)); err != nil {
		return err
	}
	if c.Database.Breaker.Enabled {
		if err := check("database.breaker.timeout", pkgconfig.ValidatePositiveDuration(c.Database.Breaker.Timeout)); err != nil {
			return err
		}
	}
	return nil
}

// Location returns the resync time zone. Load guarantees it is loadable.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Feed.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
