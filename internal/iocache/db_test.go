package iocache

import (
	"testing"

	"github.com/huangsam/commitpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	query := "SELECT a FROM t WHERE x = ? AND y IN (?, ?)"
	assert.Equal(t, query, rebind(schema.SQLiteBackend, query))
	assert.Equal(t, query, rebind(schema.MySQLBackend, query))
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y IN ($2, $3)", rebind(schema.PostgreSQLBackend, query))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "(?, ?)", placeholders(1, 2))
	assert.Equal(t, "(?, ?, ?), (?, ?, ?)", placeholders(2, 3))
	assert.Equal(t, "?, ?, ?", inList(3))
	assert.Equal(t, "?", inList(1))
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`commit_stats_cache`", quoteTableName(statsTable, schema.MySQLBackend))
	assert.Equal(t, `"commit_stats_cache"`, quoteTableName(statsTable, schema.PostgreSQLBackend))
	assert.Equal(t, `"products"`, quoteTableName(productsTable, schema.SQLiteBackend))

	assert.NoError(t, validateTableName("cache_schema_migrations"))
	assert.Error(t, validateTableName("x; DROP TABLE y"))
	assert.Error(t, validateTableName("1abc"))
}

func TestNormalizeConnStr(t *testing.T) {
	got, err := normalizeConnStr(schema.SQLiteBackend, "", "/tmp/default.db")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/default.db", got)

	got, err = normalizeConnStr(schema.MySQLBackend, "user:pass@tcp(localhost:3306)/pulse", "")
	require.NoError(t, err)
	assert.Contains(t, got, "multiStatements=true")

	_, err = normalizeConnStr(schema.MySQLBackend, "not a dsn", "")
	assert.Error(t, err)

	_, err = driverFor(schema.NoneBackend)
	assert.Error(t, err)
}

func TestMigrationSets(t *testing.T) {
	assert.Equal(t, "cache_schema_migrations", CacheMigrations.versionTable())
	assert.Equal(t, "registry_schema_migrations", RegistryMigrations.versionTable())
	assert.Equal(t, "postgres", dialectDir(schema.PostgreSQLBackend))
	assert.Equal(t, "mysql", dialectDir(schema.MySQLBackend))
	assert.Equal(t, "sqlite", dialectDir(schema.SQLiteBackend))
}

func TestMigrate(t *testing.T) {
	path := tempDB(t, "migrate.db")

	require.NoError(t, Migrate(CacheMigrations, schema.SQLiteBackend, path, -1))
	// Running again is a no-op
	require.NoError(t, Migrate(CacheMigrations, schema.SQLiteBackend, path, -1))
	require.NoError(t, Migrate(CacheMigrations, schema.SQLiteBackend, path, 1))
	require.NoError(t, Migrate(CacheMigrations, schema.SQLiteBackend, path, 0))

	require.NoError(t, Migrate(RegistryMigrations, schema.SQLiteBackend, path, -1))

	assert.Error(t, Migrate(CacheMigrations, schema.NoneBackend, "", -1))
}
