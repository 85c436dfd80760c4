// Package config provides application configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported values for database.driver.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Supported values for store.backend.
const (
	BackendSQL   = "sql"
	BackendRedis = "redis"
)

// Config holds the complete application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Store    StoreConfig
	Worker   WorkerConfig
	Cache    CacheConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int  `mapstructure:"port"`
	ServeSwagger  bool `mapstructure:"serve_swagger"`
	ServeAsynqmon bool `mapstructure:"serve_asynqmon"`
	MaxBatchSize  int  `mapstructure:"max_batch_size"`
}

// DatabaseConfig holds SQL connection settings.
type DatabaseConfig struct {
	Driver             string `mapstructure:"driver"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Name               string `mapstructure:"name"`
	SSLMode            string `mapstructure:"sslmode"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSec int    `mapstructure:"conn_max_lifetime_sec"`
	DSN                string
}

// RedisConfig holds connection settings for the Redis instances.
type RedisConfig struct {
	AsynqAddr string `mapstructure:"asynq_addr"` // Redis instance for the ingestion task queue (required).
	CacheAddr string `mapstructure:"cache_addr"` // Redis instance for the resolver cache (required).
	StoreAddr string `mapstructure:"store_addr"` // Redis instance holding rate records when store.backend=redis.
}

// StoreConfig selects where rate records are persisted.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
}

// WorkerConfig holds background worker and task queue settings.
type WorkerConfig struct {
	Concurrency      int `mapstructure:"concurrency"`
	MaxRetry         int `mapstructure:"max_retry"`
	TimeoutSec       int `mapstructure:"timeout_sec"`
	CheckIntervalSec int `mapstructure:"check_interval_sec"`
}

// CacheConfig holds caching settings.
type CacheConfig struct {
	LatestRateTTLSec int `mapstructure:"latest_rate_ttl_sec"`
	HourlyRateTTLSec int `mapstructure:"hourly_rate_ttl_sec"`
}

// LoadConfig reads configuration from config files, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file found or error loading it: %v\n", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config search paths
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./internal/config")

	v.SetEnvPrefix("RATESVC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if no config file, we have defaults and env
		fmt.Printf("Config file not found: %v\n", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.applyPoolDefaults()
	cfg.Database.DSN = cfg.Database.BuildDSN()

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.serve_swagger", true)
	v.SetDefault("server.serve_asynqmon", true)
	v.SetDefault("server.max_batch_size", 1000)
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "ratesdb")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_sec", 300)
	v.SetDefault("redis.asynq_addr", "redis_asynq:6380")
	v.SetDefault("redis.cache_addr", "redis_cache:6381")
	v.SetDefault("redis.store_addr", "")
	v.SetDefault("store.backend", BackendSQL)
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.max_retry", 3)
	v.SetDefault("worker.timeout_sec", 30)
	v.SetDefault("worker.check_interval_sec", 5)
	v.SetDefault("cache.latest_rate_ttl_sec", 60)
	v.SetDefault("cache.hourly_rate_ttl_sec", 86400)
}

func (c *Config) applyPoolDefaults() {
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetimeSec <= 0 {
		c.Database.ConnMaxLifetimeSec = 300
	}
}

// BuildDSN renders the driver-specific connection string.
// MySQL connections always use parseTime and UTC so hour timestamps round-trip unchanged.
func (d DatabaseConfig) BuildDSN() string {
	if d.Driver == DriverMySQL {
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.Name)
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// Validate checks that all required configuration fields are set and valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be positive, got %d", c.Server.Port))
	}
	if c.Server.MaxBatchSize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_batch_size must be positive, got %d", c.Server.MaxBatchSize))
	}

	switch c.Store.Backend {
	case BackendSQL:
		errs = append(errs, c.Database.validate()...)
	case BackendRedis:
		if c.Redis.StoreAddr == "" {
			errs = append(errs, fmt.Errorf("redis.store_addr is required when store.backend=redis (set RATESVC_REDIS_STORE_ADDR)"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend must be %q or %q, got %q", BackendSQL, BackendRedis, c.Store.Backend))
	}

	if c.Redis.AsynqAddr == "" {
		errs = append(errs, fmt.Errorf("redis.asynq_addr is required (set RATESVC_REDIS_ASYNQ_ADDR)"))
	}
	if c.Redis.CacheAddr == "" {
		errs = append(errs, fmt.Errorf("redis.cache_addr is required (set RATESVC_REDIS_CACHE_ADDR)"))
	}

	if c.Worker.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("worker.concurrency must be positive, got %d", c.Worker.Concurrency))
	}
	if c.Worker.MaxRetry < 0 {
		errs = append(errs, fmt.Errorf("worker.max_retry must be non-negative, got %d", c.Worker.MaxRetry))
	}
	if c.Worker.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("worker.timeout_sec must be positive, got %d", c.Worker.TimeoutSec))
	}
	if c.Worker.CheckIntervalSec <= 0 {
		errs = append(errs, fmt.Errorf("worker.check_interval_sec must be positive, got %d", c.Worker.CheckIntervalSec))
	}

	if c.Cache.LatestRateTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("cache.latest_rate_ttl_sec must be positive, got %d", c.Cache.LatestRateTTLSec))
	}
	if c.Cache.HourlyRateTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("cache.hourly_rate_ttl_sec must be positive, got %d", c.Cache.HourlyRateTTLSec))
	}

	return errors.Join(errs...)
}

func (d DatabaseConfig) validate() []error {
	var errs []error
	if d.Driver != DriverPostgres && d.Driver != DriverMySQL {
		errs = append(errs, fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverMySQL, d.Driver))
	}
	if d.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if d.Port <= 0 {
		errs = append(errs, fmt.Errorf("database.port must be positive, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}
	if d.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	return errs
}
