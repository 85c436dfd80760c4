//go:build integration

package integration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"ratehistory/internal/config"
	"ratehistory/internal/repository"
)

var (
	testDB    *sql.DB
	testMySQL *sql.DB // nil when TEST_SKIP_MYSQL is set
	testRDB   *redis.Client // Redis rate store
	testCache *redis.Client // resolver cache
)

var hour14 = time.Date(2024, 11, 19, 14, 0, 0, 0, time.UTC)

type backend struct {
	name string
	repo repository.RateRepository
}

// backends returns every configured rate store, emptied for the calling test.
func backends(t *testing.T) []backend {
	t.Helper()
	resetTestData(t)

	out := []backend{
		{name: "postgres", repo: repository.NewSQLRateRepository(testDB, config.DriverPostgres)},
		{name: "redis", repo: repository.NewRedisRateRepository(testRDB)},
	}
	if testMySQL != nil {
		out = append(out, backend{name: "mysql", repo: repository.NewSQLRateRepository(testMySQL, config.DriverMySQL)})
	}
	return out
}

// resetTestData empties the rate tables and flushes the Redis store and cache databases.
func resetTestData(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if _, err := testDB.ExecContext(ctx, "TRUNCATE TABLE exchange_rates"); err != nil {
		t.Fatalf("failed to truncate postgres exchange_rates: %v", err)
	}
	if testMySQL != nil {
		if _, err := testMySQL.ExecContext(ctx, "TRUNCATE TABLE exchange_rates"); err != nil {
			t.Fatalf("failed to truncate mysql exchange_rates: %v", err)
		}
	}
	if err := testRDB.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("failed to flush redis store: %v", err)
	}
	if err := testCache.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("failed to flush redis cache: %v", err)
	}
}

func record(from, to, rate string, ts time.Time) repository.RateRecord {
	return repository.RateRecord{CurrencyFrom: from, CurrencyTo: to, Rate: decimal.RequireFromString(rate), Timestamp: ts}
}

// testContext returns a context with a 30-second deadline tied to the test's cleanup.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
