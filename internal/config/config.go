package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultStorageKey is the single named key the workout history lives under.
const DefaultStorageKey = "setsreps-workouts"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	History   HistoryConfig   `yaml:"history"`
	Stats     StatsConfig     `yaml:"stats"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// StorageConfig selects the durable backend for workout history.
type StorageConfig struct {
	Backend  string         `yaml:"backend"` // sqlite | postgres | redis
	Key      string         `yaml:"key"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres DatabaseConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type HistoryConfig struct {
	MaxWorkouts int `yaml:"max_workouts"`
}

// StatsConfig controls how calendar days and weeks are drawn for streaks
// and periodic aggregates.
type StatsConfig struct {
	Timezone  string `yaml:"timezone"`
	WeekStart string `yaml:"week_start"` // monday | sunday
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // text | json
	File       string `yaml:"file"`
	Stdout     bool   `yaml:"stdout"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Location resolves the stats timezone. Validation guarantees it loads.
func (s StatsConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// FirstWeekday returns the weekday periodic aggregates start a week on.
func (s StatsConfig) FirstWeekday() time.Weekday {
	if strings.EqualFold(s.WeekStart, "sunday") {
		return time.Sunday
	}
	return time.Monday
}

// Default returns a config with every default applied and no file read.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Storage: StorageConfig{
			Backend: "sqlite",
			Key:     DefaultStorageKey,
			SQLite:  SQLiteConfig{Path: "setsreps.db"},
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		History:   HistoryConfig{MaxWorkouts: 50},
		Stats:     StatsConfig{Timezone: "Local", WeekStart: "monday"},
		Logging:   LoggingConfig{Level: "info", Format: "text", Stdout: true, MaxSizeMB: 50},
		Tailscale: TailscaleConfig{Hostname: "setsreps", StateDir: "tsnet-state"},
	}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A .env file in the working directory is loaded first when present.
// Env vars use the prefix SETSREPS_ and underscore-separated paths:
//
//	SETSREPS_SERVER_HOST, SETSREPS_SERVER_PORT, SETSREPS_AUTH_API_KEY,
//	SETSREPS_STORAGE_BACKEND, SETSREPS_STORAGE_KEY, SETSREPS_SQLITE_PATH,
//	SETSREPS_DB_HOST, SETSREPS_DB_PORT, SETSREPS_DB_NAME,
//	SETSREPS_DB_USER, SETSREPS_DB_PASSWORD, SETSREPS_DB_SSLMODE,
//	SETSREPS_REDIS_ADDR, SETSREPS_REDIS_PASSWORD, SETSREPS_REDIS_DB,
//	SETSREPS_HISTORY_MAX_WORKOUTS, SETSREPS_STATS_TIMEZONE,
//	SETSREPS_LOG_LEVEL, SETSREPS_LOG_FORMAT, SETSREPS_LOG_FILE,
//	SETSREPS_TAILSCALE_ENABLED
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("SETSREPS_SERVER_HOST", &cfg.Server.Host)
	num("SETSREPS_SERVER_PORT", &cfg.Server.Port)
	str("SETSREPS_AUTH_API_KEY", &cfg.Auth.APIKey)

	str("SETSREPS_STORAGE_BACKEND", &cfg.Storage.Backend)
	str("SETSREPS_STORAGE_KEY", &cfg.Storage.Key)
	str("SETSREPS_SQLITE_PATH", &cfg.Storage.SQLite.Path)

	str("SETSREPS_DB_HOST", &cfg.Storage.Postgres.Host)
	num("SETSREPS_DB_PORT", &cfg.Storage.Postgres.Port)
	str("SETSREPS_DB_NAME", &cfg.Storage.Postgres.Name)
	str("SETSREPS_DB_USER", &cfg.Storage.Postgres.User)
	str("SETSREPS_DB_PASSWORD", &cfg.Storage.Postgres.Password)
	str("SETSREPS_DB_SSLMODE", &cfg.Storage.Postgres.SSLMode)

	str("SETSREPS_REDIS_ADDR", &cfg.Storage.Redis.Addr)
	str("SETSREPS_REDIS_PASSWORD", &cfg.Storage.Redis.Password)
	num("SETSREPS_REDIS_DB", &cfg.Storage.Redis.DB)

	num("SETSREPS_HISTORY_MAX_WORKOUTS", &cfg.History.MaxWorkouts)
	str("SETSREPS_STATS_TIMEZONE", &cfg.Stats.Timezone)

	str("SETSREPS_LOG_LEVEL", &cfg.Logging.Level)
	str("SETSREPS_LOG_FORMAT", &cfg.Logging.Format)
	str("SETSREPS_LOG_FILE", &cfg.Logging.File)

	if v := os.Getenv("SETSREPS_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
}

// applyDefaults fills fields a YAML file may have blanked out explicitly.
func (c *Config) applyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = "sqlite"
	}
	if c.Storage.Key == "" {
		c.Storage.Key = DefaultStorageKey
	}
	if c.Storage.SQLite.Path == "" {
		c.Storage.SQLite.Path = "setsreps.db"
	}
	if c.History.MaxWorkouts == 0 {
		c.History.MaxWorkouts = 50
	}
	if c.Stats.Timezone == "" {
		c.Stats.Timezone = "Local"
	}
	if c.Stats.WeekStart == "" {
		c.Stats.WeekStart = "monday"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}

	switch c.Storage.Backend {
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required")
		}
	case "postgres":
		pg := c.Storage.Postgres
		if pg.Host == "" {
			return fmt.Errorf("storage.postgres.host is required")
		}
		if pg.Port == 0 {
			return fmt.Errorf("storage.postgres.port is required")
		}
		if pg.Name == "" {
			return fmt.Errorf("storage.postgres.name is required")
		}
		if pg.User == "" {
			return fmt.Errorf("storage.postgres.user is required")
		}
	case "redis":
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is required")
		}
	default:
		return fmt.Errorf("storage.backend must be sqlite, postgres or redis, got %q", c.Storage.Backend)
	}

	if c.History.MaxWorkouts < 0 {
		return fmt.Errorf("history.max_workouts must be positive, got %d", c.History.MaxWorkouts)
	}
	if _, err := time.LoadLocation(c.Stats.Timezone); err != nil {
		return fmt.Errorf("stats.timezone: %w", err)
	}
	switch strings.ToLower(c.Stats.WeekStart) {
	case "monday", "sunday":
	default:
		return fmt.Errorf("stats.week_start must be monday or sunday, got %q", c.Stats.WeekStart)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}
