package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations executes database migrations for the SQL storage backends.
// Determines the migration path from the storage backend (postgres or mysql)
// and applies all pending migrations. Returns nil if no migrations to apply.
// The file backend keeps its own on-disk format and never migrates.
func RunMigrations(logger *slog.Logger, backend, connectionString string) error {
	if backend == "file" {
		return fmt.Errorf("storage backend %q does not use database migrations", backend)
	}

	logger.Info("running database migrations",
		slog.String("backend", backend),
	)

	// Determine migration path based on backend
	migrationsPath := "file://migrations/postgresql"
	if backend == "mysql" {
		migrationsPath = "file://migrations/mysql"
	}

	m, err := migrate.New(migrationsPath, connectionString)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}
