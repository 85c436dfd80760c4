package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{Port: 8080, MaxBatchSize: 100},
		Database: DatabaseConfig{
			Driver: DriverPostgres,
			Host:   "db",
			Port:   5432,
			User:   "postgres",
			Name:   "ratesdb",
		},
		Redis:  RedisConfig{AsynqAddr: "localhost:6380", CacheAddr: "localhost:6381"},
		Store:  StoreConfig{Backend: BackendSQL},
		Worker: WorkerConfig{Concurrency: 4, MaxRetry: 3, TimeoutSec: 30, CheckIntervalSec: 5},
		Cache:  CacheConfig{LatestRateTTLSec: 60, HourlyRateTTLSec: 3600},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid sql", mutate: func(c *Config) {}},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "sqlite" },
			wantErr: "database.driver",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Store.Backend = "memory" },
			wantErr: "store.backend",
		},
		{
			name: "redis backend needs store addr",
			mutate: func(c *Config) {
				c.Store.Backend = BackendRedis
			},
			wantErr: "redis.store_addr",
		},
		{
			name: "redis backend ignores database settings",
			mutate: func(c *Config) {
				c.Store.Backend = BackendRedis
				c.Redis.StoreAddr = "localhost:6382"
				c.Database = DatabaseConfig{}
			},
		},
		{
			name:    "missing cache addr",
			mutate:  func(c *Config) { c.Redis.CacheAddr = "" },
			wantErr: "redis.cache_addr",
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.Server.MaxBatchSize = 0 },
			wantErr: "server.max_batch_size",
		},
		{
			name:    "zero latest ttl",
			mutate:  func(c *Config) { c.Cache.LatestRateTTLSec = 0 },
			wantErr: "cache.latest_rate_ttl_sec",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Worker.Concurrency = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "worker.concurrency")
}

func TestBuildDSN(t *testing.T) {
	pg := DatabaseConfig{Driver: DriverPostgres, User: "u", Password: "p", Host: "h", Port: 5432, Name: "rates", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/rates?sslmode=disable", pg.BuildDSN())

	my := DatabaseConfig{Driver: DriverMySQL, User: "u", Password: "p", Host: "h", Port: 3306, Name: "rates"}
	assert.Equal(t, "u:p@tcp(h:3306)/rates?parseTime=true&loc=UTC", my.BuildDSN())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("RATESVC_SERVER_PORT", "9090")
	t.Setenv("RATESVC_DATABASE_DRIVER", DriverMySQL)
	t.Setenv("RATESVC_DATABASE_PORT", "3306")
	t.Setenv("RATESVC_DATABASE_MAX_OPEN_CONNS", "0")
	t.Setenv("RATESVC_CACHE_LATEST_RATE_TTL_SEC", "15")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, 15, cfg.Cache.LatestRateTTLSec)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns, "pool defaults fill non-positive values")
	assert.Equal(t, "postgres:postgres@tcp(db:3306)/ratesdb?parseTime=true&loc=UTC", cfg.Database.DSN)
}

func TestLoadConfig_InvalidEnv(t *testing.T) {
	t.Setenv("RATESVC_STORE_BACKEND", "redis")
	t.Setenv("RATESVC_REDIS_STORE_ADDR", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.store_addr")
}
