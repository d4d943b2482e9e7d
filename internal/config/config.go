// Package config loads service configuration from files and environment
// variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Priyansh0418/Haski-sub005/internal/database"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds the PostgreSQL settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// StorageConfig selects the backend for each store.
type StorageConfig struct {
	// RecommendationStore is "memory" or "postgres".
	RecommendationStore string `mapstructure:"recommendation_store"`
	// FeedbackStore is "sqlite" or "postgres".
	FeedbackStore string `mapstructure:"feedback_store"`
	// AuditStore is "memory" or "sqlite".
	AuditStore     string `mapstructure:"audit_store"`
	FeedbackDBPath string `mapstructure:"feedback_db_path"`
	AuditDBPath    string `mapstructure:"audit_db_path"`
}

// RulesConfig locates the rule source file.
type RulesConfig struct {
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RateLimitConfig throttles the public API.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// Load reads configuration from config.yaml (searched in ., ./config, and
// /etc/haski-recommendation/) with HASKI_-prefixed environment variables
// taking precedence over file values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/haski-recommendation/")

	v.SetEnvPrefix("HASKI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; defaults and environment variables apply.
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "haski")
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.conn_max_idle_time", "30m")
	v.SetDefault("database.migrations_path", "migrations")

	v.SetDefault("storage.recommendation_store", "memory")
	v.SetDefault("storage.feedback_store", "sqlite")
	v.SetDefault("storage.audit_store", "sqlite")
	v.SetDefault("storage.feedback_db_path", "data/feedback.db")
	v.SetDefault("storage.audit_db_path", "data/audit.db")

	v.SetDefault("rules.path", "config/rules.yaml")
	v.SetDefault("rules.watch", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("rate_limit.requests_per_second", 50)
	v.SetDefault("rate_limit.burst", 100)
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Storage.RecommendationStore {
	case "memory", "postgres":
	default:
		return fmt.Errorf("invalid recommendation store backend: %q", c.Storage.RecommendationStore)
	}
	switch c.Storage.FeedbackStore {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid feedback store backend: %q", c.Storage.FeedbackStore)
	}
	switch c.Storage.AuditStore {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("invalid audit store backend: %q", c.Storage.AuditStore)
	}

	if c.usesPostgres() {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required for postgres-backed stores")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required for postgres-backed stores")
		}
	}

	if c.Rules.Path == "" {
		return fmt.Errorf("rules path is required")
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate limit requests_per_second must be positive")
	}
	if c.RateLimit.Burst < 1 {
		return fmt.Errorf("rate limit burst must be at least 1")
	}

	return nil
}

func (c *Config) usesPostgres() bool {
	return c.Storage.RecommendationStore == "postgres" || c.Storage.FeedbackStore == "postgres"
}

// PoolConfig converts the database section into the connection pool config
// used by the database package.
func (c *Config) PoolConfig() database.Config {
	return database.Config{
		Host:        c.Database.Host,
		Port:        c.Database.Port,
		Database:    c.Database.Database,
		Username:    c.Database.Username,
		Password:    c.Database.Password,
		MaxConns:    c.Database.MaxConns,
		MinConns:    c.Database.MinConns,
		MaxConnLife: c.Database.ConnMaxLifetime,
		MaxConnIdle: c.Database.ConnMaxIdleTime,
		SSLMode:     c.Database.SSLMode,
	}
}

// Address returns the host:port the HTTP server binds to.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
