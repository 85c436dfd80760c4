package repository

import (
	"database/sql"
	"embed"
	"fmt"

	"go.uber.org/zap"

	"ratehistory/internal/config"
)

//go:embed migrations/postgres/*.sql migrations/mysql/*.sql
var migrationsFS embed.FS

// RunMigrations applies the SQL migrations for the given driver, one transaction per file.
func RunMigrations(db *sql.DB, driver string, logger *zap.SugaredLogger) error {
	dir := "migrations/postgres"
	if driver == config.DriverMySQL {
		dir = "migrations/mysql"
	}

	// ReadDir returns entries sorted by filename, so numeric prefixes define the order.
	files, err := migrationsFS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("migrations read error: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		name := file.Name()
		sqlBytes, err := migrationsFS.ReadFile(dir + "/" + name)
		if err != nil {
			return fmt.Errorf("read migration file %s: %w", name, err)
		}

		if err := executeMigration(db, name, string(sqlBytes)); err != nil {
			return err
		}
		logger.Infow("Applied migration", "name", name, "driver", driver)
	}
	return nil
}

func executeMigration(db *sql.DB, name, sqlScript string) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction for migration %s: %w", name, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(sqlScript); err != nil {
		return fmt.Errorf("execute migration %s: %w", name, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}
