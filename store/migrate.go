package store

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// Registers the "postgres" database/sql driver used by the migrate
	// instance below; never referenced directly.
	_ "github.com/lib/pq"
)

//go:embed sqlmigrations/*.sql
var migrationFiles embed.FS

// RunMigrations brings the schema at dbURL up to the latest version known
// to the embedded sqlmigrations directory. It is safe to call on every
// process start: golang-migrate no-ops once the schema is current.
func RunMigrations(dbURL string) error {
	source, err := iofs.New(migrationFiles, "sqlmigrations")
	if err != nil {
		return fmt.Errorf("store: load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return fmt.Errorf("store: init migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("store: apply migrations: %w", err)
	}
	return nil
}

// ensure the postgres database driver package is linked in even though it
// is only referenced through migrate's URL-scheme registry.
var _ = postgres.Driver{}
