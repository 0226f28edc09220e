package iocache

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
)

//go:embed migrations
var migrationsFS embed.FS

// MigrationSet names a group of schema migrations tracked independently.
type MigrationSet string

// Migration sets.
const (
	CacheMigrations    MigrationSet = "cache"    // commit stats and narratives
	RegistryMigrations MigrationSet = "registry" // products, repositories, members, credentials
)

// defaultPath returns the SQLite file of the set.
func (s MigrationSet) defaultPath() string {
	if s == RegistryMigrations {
		return contract.GetRegistryDBFilePath()
	}
	return contract.GetCacheDBFilePath()
}

// versionTable keeps each set's version row apart when both share one database.
func (s MigrationSet) versionTable() string {
	return string(s) + "_schema_migrations"
}

// dialectDir returns the migrations subdirectory for a backend.
func dialectDir(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return "mysql"
	case schema.PostgreSQLBackend:
		return "postgres"
	default:
		return "sqlite"
	}
}

// newMigrator opens a dedicated connection and wraps it in a migrate instance.
// Closing the returned instance also closes that connection.
func newMigrator(set MigrationSet, backend schema.DatabaseBackend, connStr string) (*migrate.Migrate, error) {
	if backend == schema.NoneBackend {
		return nil, fmt.Errorf("migrations are not supported for NoneBackend")
	}

	db, err := openDB(backend, connStr, set.defaultPath())
	if err != nil {
		return nil, err
	}

	// Create a migrate driver instance
	var driver database.Driver
	switch backend {
	case schema.SQLiteBackend:
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{MigrationsTable: set.versionTable()})
	case schema.MySQLBackend:
		driver, err = migratemysql.WithInstance(db, &migratemysql.Config{MigrationsTable: set.versionTable()})
	case schema.PostgreSQLBackend:
		driver, err = migratepgx.WithInstance(db, &migratepgx.Config{MigrationsTable: set.versionTable()})
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}

	// Get the migrations subdirectory
	sub, err := fs.Sub(migrationsFS, "migrations/"+string(set)+"/"+dialectDir(backend))
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("failed to access migrations directory: %w", err)
	}
	sourceDriver, err := iofs.New(sub, ".")
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "commitpulse", driver)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// migrateUp brings a set to its latest version without printing anything.
func migrateUp(set MigrationSet, backend schema.DatabaseBackend, connStr string) error {
	m, err := newMigrator(set, backend, connStr)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate %s schema: %w", set, err)
	}
	return nil
}

// Migrate runs database migrations for a set.
// - If targetVersion < 0, it migrates to the latest version.
// - If targetVersion == 0, it rolls back all migrations (to initial state).
// - If targetVersion > 0, it migrates to the specified version.
func Migrate(set MigrationSet, backend schema.DatabaseBackend, connStr string, targetVersion int) error {
	m, err := newMigrator(set, backend, connStr)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", currentVersion)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Printf("No migration needed. The %s schema is already at version %d.\n", set, currentVersion)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to migrate %s schema: %w", set, err)
	}

	newVersion, _, _ := m.Version()
	fmt.Printf("Successfully migrated the %s schema from version %d to version %d\n", set, currentVersion, newVersion)
	return nil
}
