package testkit

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
)

// MySQLModule wraps a MySQL testcontainer and the DSN for the test database.
type MySQLModule struct {
	container testcontainers.Container
	dsn       string
}

// DSN returns a go-sql-driver DSN for the MySQL instance.
func (m *MySQLModule) DSN() string { return m.dsn }

// Terminate stops the MySQL container.
func (m *MySQLModule) Terminate(ctx context.Context) error {
	if m.container == nil {
		return nil
	}
	return m.container.Terminate(ctx)
}

// StartMySQL starts a MySQL container or uses an external DSN from config.
func StartMySQL(ctx context.Context, cfg *Config) (*MySQLModule, error) {
	if cfg.MySQLDSN != "" {
		return &MySQLModule{dsn: cfg.MySQLDSN}, nil
	}

	ctr, err := mysql.Run(ctx,
		cfg.MySQLImage,
		mysql.WithDatabase(randomDBName()),
		mysql.WithUsername("testuser"),
		mysql.WithPassword("testpass"),
	)
	if err != nil {
		return nil, fmt.Errorf("start mysql container: %w", err)
	}

	// Rate hours are stored as DATETIME and must come back as UTC time.Time values.
	connStr, err := ctr.ConnectionString(ctx, "parseTime=true", "loc=UTC")
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("get mysql connection string: %w", err)
	}

	return &MySQLModule{
		container: ctr,
		dsn:       connStr,
	}, nil
}
