package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// EnvPrefix префикс переменных окружения, перекрывающих config.toml
const EnvPrefix = "SMC_"

type Config struct {
	Server     ServerConfig     `toml:"server" envPrefix:"SERVER_"`
	Database   DatabaseConfig   `toml:"database" envPrefix:"DATABASE_"`
	Logs       LogsConfig       `toml:"logs" envPrefix:"LOGS_"`
	Metrics    MetricsConfig    `toml:"metrics" envPrefix:"METRICS_"`
	Scheduling SchedulingConfig `toml:"scheduling" envPrefix:"SCHEDULING_"`
	Redis      RedisConfig      `toml:"redis" envPrefix:"REDIS_"`
	RateLimit  RateLimitConfig  `toml:"ratelimit" envPrefix:"RATELIMIT_"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port" env:"HTTP_PORT"`
	ReadTimeout     int `toml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    int `toml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout     int `toml:"idle_timeout" env:"IDLE_TIMEOUT"`
	ShutdownTimeout int `toml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

type DatabaseConfig struct {
	// Driver postgres или sqlite
	Driver   string `toml:"driver" env:"DRIVER"`
	Host     string `toml:"host" env:"HOST"`
	Port     int    `toml:"port" env:"PORT"`
	User     string `toml:"user" env:"USER"`
	Password string `toml:"password" env:"PASSWORD"`
	DBName   string `toml:"dbname" env:"DBNAME"`
	SSLMode  string `toml:"sslmode" env:"SSLMODE"`
	// Path файл базы для sqlite
	Path string `toml:"path" env:"PATH"`

	MaxOpenConns    int  `toml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns    int  `toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	ConnMaxLifetime int  `toml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
	Migrate         bool `toml:"migrate" env:"MIGRATE"`
}

// DSN строка подключения для выбранного драйвера
func (c DatabaseConfig) DSN() string {
	if c.Driver == "sqlite" {
		return c.Path
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.DBName,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

type LogsConfig struct {
	// File путь к файлу логов, пустой - stdout
	File  string `toml:"file" env:"FILE"`
	Level string `toml:"level" env:"LEVEL"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled" env:"ENABLED"`
	Path        string `toml:"path" env:"PATH"`
	ServiceName string `toml:"service_name" env:"SERVICE_NAME"`
}

type SchedulingConfig struct {
	MaxAttempts             int `toml:"max_attempts" env:"MAX_ATTEMPTS"`
	BaseBackoffMs           int `toml:"base_backoff_ms" env:"BASE_BACKOFF_MS"`
	MaxBackoffMs            int `toml:"max_backoff_ms" env:"MAX_BACKOFF_MS"`
	LockTimeoutMs           int `toml:"lock_timeout_ms" env:"LOCK_TIMEOUT_MS"`
	ConflictListLimit       int `toml:"conflict_list_limit" env:"CONFLICT_LIST_LIMIT"`
	CapacityCacheTTLSeconds int `toml:"capacity_cache_ttl_seconds" env:"CAPACITY_CACHE_TTL_SECONDS"`
	// DefaultMaxOverlap системный лимит, записывается в БД при первом старте
	DefaultMaxOverlap int `toml:"default_max_overlap" env:"DEFAULT_MAX_OVERLAP"`
}

func (c SchedulingConfig) BaseBackoff() time.Duration {
	return time.Duration(c.BaseBackoffMs) * time.Millisecond
}

func (c SchedulingConfig) MaxBackoff() time.Duration {
	return time.Duration(c.MaxBackoffMs) * time.Millisecond
}

func (c SchedulingConfig) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutMs) * time.Millisecond
}

func (c SchedulingConfig) CapacityCacheTTL() time.Duration {
	return time.Duration(c.CapacityCacheTTLSeconds) * time.Second
}

type RedisConfig struct {
	Enabled bool   `toml:"enabled" env:"ENABLED"`
	URL     string `toml:"url" env:"URL"`
	Channel string `toml:"channel" env:"CHANNEL"`
}

type RateLimitConfig struct {
	Enabled bool    `toml:"enabled" env:"ENABLED"`
	RPS     float64 `toml:"rps" env:"RPS"`
	Burst   int     `toml:"burst" env:"BURST"`
}

// Default значения, если в файле их нет
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			Migrate:         true,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "appointmentservice",
		},
		Scheduling: SchedulingConfig{
			MaxAttempts:             4,
			BaseBackoffMs:           20,
			MaxBackoffMs:            200,
			LockTimeoutMs:           3000,
			ConflictListLimit:       20,
			CapacityCacheTTLSeconds: 30,
			DefaultMaxOverlap:       1,
		},
		Redis:     RedisConfig{Channel: "capacity-invalidation"},
		RateLimit: RateLimitConfig{RPS: 50, Burst: 100},
	}
}

// Load читает config.toml поверх значений по умолчанию, потом переменные SMC_*
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	var errs []error

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("server.http_port must be in 1..65535, got %d", c.Server.HTTPPort))
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" || c.Database.DBName == "" {
			errs = append(errs, errors.New("database.host and database.dbname are required for postgres"))
		}
	case "sqlite":
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver))
	}

	s := c.Scheduling
	if s.MaxAttempts < 1 {
		errs = append(errs, errors.New("scheduling.max_attempts must be at least 1"))
	}
	if s.BaseBackoffMs < 0 || s.MaxBackoffMs < s.BaseBackoffMs {
		errs = append(errs, errors.New("scheduling backoff must satisfy 0 <= base_backoff_ms <= max_backoff_ms"))
	}
	if s.LockTimeoutMs <= 0 {
		errs = append(errs, errors.New("scheduling.lock_timeout_ms must be positive"))
	}
	if s.ConflictListLimit <= 0 {
		errs = append(errs, errors.New("scheduling.conflict_list_limit must be positive"))
	}
	if s.DefaultMaxOverlap < 0 {
		errs = append(errs, errors.New("scheduling.default_max_overlap must not be negative"))
	}

	if c.Redis.Enabled && (c.Redis.URL == "" || c.Redis.Channel == "") {
		errs = append(errs, errors.New("redis.url and redis.channel are required when redis is enabled"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("ratelimit.rps and ratelimit.burst must be positive when enabled"))
	}

	return errors.Join(errs...)
}
