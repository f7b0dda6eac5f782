// Package config loads and validates the sync server's configuration,
// modeled directly on the teacher's internal/config package: a root Config
// struct with mapstructure-tagged sections, a DeploymentProfile switch
// between an embedded-SQLite "lite" profile and a Postgres+Redis "standard"
// profile, env var overrides via viper, and a Validate method.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/noteflow/syncserver/internal/domain"
)

// DeploymentProfile selects the storage/cache backends.
type DeploymentProfile string

const (
	ProfileLite     DeploymentProfile = "lite"
	ProfileStandard DeploymentProfile = "standard"
)

// Config is the root configuration object.
type Config struct {
	Profile  DeploymentProfile `mapstructure:"profile"`
	Server   ServerConfig      `mapstructure:"server"`
	Database DatabaseConfig    `mapstructure:"database"`
	Redis    RedisConfig       `mapstructure:"redis"`
	Log      LogConfig         `mapstructure:"log"`
	Sync     SyncConfig        `mapstructure:"sync"`
	Realtime RealtimeConfig    `mapstructure:"realtime"`
	Fallback FallbackConfig    `mapstructure:"fallback"`
	Conflict ConflictConfig    `mapstructure:"conflict"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port                    int           `mapstructure:"port"`
	Host                    string        `mapstructure:"host"`
	ReadTimeout             time.Duration `mapstructure:"read_timeout"`
	WriteTimeout            time.Duration `mapstructure:"write_timeout"`
	IdleTimeout             time.Duration `mapstructure:"idle_timeout"`
	GracefulShutdownTimeout time.Duration `mapstructure:"graceful_shutdown_timeout"`
}

// DatabaseConfig holds the standard-profile Postgres connection, and the
// lite-profile SQLite file path.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // "postgres" | "sqlite"
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

// RedisConfig holds the recent-ops index connection (spec §4.2 Open
// Questions, the optional "concurrent field change" signal).
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	Enabled      bool          `mapstructure:"enabled"`
	RecentOpsTTL time.Duration `mapstructure:"recent_ops_ttl"`
}

// LogConfig mirrors the teacher's pkg/logger.Config.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// SyncConfig holds Sync Coordinator defaults (spec §6).
type SyncConfig struct {
	Timeout                   time.Duration `mapstructure:"timeout"`
	MaxRetries                int           `mapstructure:"max_retries"`
	RetryDelay                time.Duration `mapstructure:"retry_delay"`
	DefaultBatchSize          int           `mapstructure:"default_batch_size"`
	DefaultResolutionStrategy domain.Strategy `mapstructure:"default_resolution_strategy"`
}

// RealtimeConfig holds Connection Supervisor defaults (spec §6).
type RealtimeConfig struct {
	AuthTimeout        time.Duration `mapstructure:"auth_timeout"`
	HeartbeatInterval  time.Duration `mapstructure:"heartbeat_interval"`
	HeartbeatTimeout   time.Duration `mapstructure:"heartbeat_timeout"`
	MaxAuthAttempts    int           `mapstructure:"max_auth_attempts"`
	PerUserMaxSessions int           `mapstructure:"per_user_max_sessions"`
}

// FallbackConfig holds health-tracking and polling defaults (spec §6).
type FallbackConfig struct {
	DisconnectThreshold int           `mapstructure:"disconnect_threshold"`
	DisconnectWindow    time.Duration `mapstructure:"disconnect_window"`
	TimeoutThresholdMs  int64         `mapstructure:"timeout_threshold_ms"`
	AutoRecoveryDelay   time.Duration `mapstructure:"auto_recovery_delay"`
	NormalIntervalMs    int64         `mapstructure:"normal_interval_ms"`
	HighIntervalMs      int64         `mapstructure:"high_interval_ms"`
	MinIntervalMs       int64         `mapstructure:"min_interval_ms"`
	MaxIntervalMs       int64         `mapstructure:"max_interval_ms"`
}

// ConflictConfig holds the conflict registry's retention bounds (spec §6).
type ConflictConfig struct {
	RetentionDays        int           `mapstructure:"retention_days"`
	MaxRecords           int           `mapstructure:"max_records"`
	ResolutionTimeout    time.Duration `mapstructure:"resolution_timeout"`
	SweepInterval        time.Duration `mapstructure:"sweep_interval"`
}

// Load reads configuration from an optional YAML file plus environment
// variable overrides (SYNCSERVER_SERVER_PORT etc.), applies defaults, and
// validates the result.
func Load(configPath string) (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix("syncserver")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("profile", "lite")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.graceful_shutdown_timeout", "30s")

	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.sqlite_path", "./syncserver.db")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.database", "syncserver")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.min_connections", 2)
	viper.SetDefault("database.max_conn_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.dial_timeout", "5s")
	viper.SetDefault("redis.recent_ops_ttl", "10m")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.max_size", 100)
	viper.SetDefault("log.max_backups", 3)
	viper.SetDefault("log.max_age", 28)
	viper.SetDefault("log.compress", true)

	viper.SetDefault("sync.timeout", "60s")
	viper.SetDefault("sync.max_retries", 3)
	viper.SetDefault("sync.retry_delay", "1s")
	viper.SetDefault("sync.default_batch_size", 100)
	viper.SetDefault("sync.default_resolution_strategy", "")

	viper.SetDefault("realtime.auth_timeout", "5s")
	viper.SetDefault("realtime.heartbeat_interval", "30s")
	viper.SetDefault("realtime.heartbeat_timeout", "60s")
	viper.SetDefault("realtime.max_auth_attempts", 3)
	viper.SetDefault("realtime.per_user_max_sessions", 0)

	viper.SetDefault("fallback.disconnect_threshold", 3)
	viper.SetDefault("fallback.disconnect_window", "60s")
	viper.SetDefault("fallback.timeout_threshold_ms", 5000)
	viper.SetDefault("fallback.auto_recovery_delay", "30s")
	viper.SetDefault("fallback.normal_interval_ms", 5000)
	viper.SetDefault("fallback.high_interval_ms", 1000)
	viper.SetDefault("fallback.min_interval_ms", 1000)
	viper.SetDefault("fallback.max_interval_ms", 30000)

	viper.SetDefault("conflict.retention_days", 30)
	viper.SetDefault("conflict.max_records", 1000)
	viper.SetDefault("conflict.resolution_timeout", "30s")
	viper.SetDefault("conflict.sweep_interval", "1h")
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Profile != ProfileLite && c.Profile != ProfileStandard {
		return fmt.Errorf("invalid deployment profile: %q (must be %q or %q)", c.Profile, ProfileLite, ProfileStandard)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	switch c.Profile {
	case ProfileLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("lite profile requires database.sqlite_path")
		}
	case ProfileStandard:
		if c.Database.Host == "" || c.Database.Database == "" {
			return fmt.Errorf("standard profile requires database.host and database.database")
		}
	}
	if c.Log.Level == "" {
		return fmt.Errorf("log level cannot be empty")
	}
	if c.Conflict.MaxRecords <= 0 {
		return fmt.Errorf("conflict.max_records must be positive")
	}
	if c.Conflict.RetentionDays <= 0 {
		return fmt.Errorf("conflict.retention_days must be positive")
	}
	if c.Fallback.MinIntervalMs <= 0 || c.Fallback.MaxIntervalMs < c.Fallback.MinIntervalMs {
		return fmt.Errorf("fallback interval bounds are invalid: min=%d max=%d", c.Fallback.MinIntervalMs, c.Fallback.MaxIntervalMs)
	}
	return nil
}
