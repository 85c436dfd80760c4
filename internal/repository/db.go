package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ratehistory/internal/config"

	_ "github.com/go-sql-driver/mysql" // mysql driver registration
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver registration
)

// driverName maps the configured database driver onto the registered database/sql driver.
func driverName(driver string) string {
	if driver == config.DriverMySQL {
		return "mysql"
	}
	return "pgx"
}

// NewSQLDB opens a database connection using the provided configuration.
func NewSQLDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(driverName(cfg.Driver), cfg.DSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeSec) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return db, nil
}

// NewSQLRateRepository picks the dialect matching the configured driver.
func NewSQLRateRepository(db *sql.DB, driver string) *SQLRateRepository {
	if driver == config.DriverMySQL {
		return NewMySQLRateRepository(db)
	}
	return NewPostgresRateRepository(db)
}
