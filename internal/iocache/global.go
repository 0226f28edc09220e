package iocache

import (
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &StoreManagerImpl{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with the cache and registry stores.
// An empty registryBackend skips the registry, which cache-only commands rely on.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, registryBackend schema.DatabaseBackend, registryConnStr, secretKey string) error {
	var initErr error

	initOnce.Do(func() {
		if cacheBackend == "" {
			cacheBackend = schema.NoneBackend
		}

		stats, err := NewStatsStore(cacheBackend, cacheConnStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize stats cache: %w", err)
			return
		}

		narratives, err := NewNarrativeStore(cacheBackend, cacheConnStr)
		if err != nil {
			_ = stats.Close()
			initErr = fmt.Errorf("failed to initialize narrative cache: %w", err)
			return
		}

		var registry contract.RegistryStore
		if registryBackend != "" {
			registry, err = NewRegistryStore(registryBackend, registryConnStr, secretKey)
			if err != nil {
				_ = stats.Close()
				_ = narratives.Close()
				initErr = fmt.Errorf("failed to initialize registry: %w", err)
				return
			}
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.stats = stats
		Manager.narratives = narratives
		Manager.registry = registry
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.stats != nil {
			_ = Manager.stats.Close()
		}
		if Manager.narratives != nil {
			_ = Manager.narratives.Close()
		}
		if Manager.registry != nil {
			_ = Manager.registry.Close()
		}
	})
}

// ClearCache clears the statistics and narrative cache for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the cache tables and their version table.
// For NoneBackend, it does nothing.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		tables := []string{statsTable, narrativeTable, CacheMigrations.versionTable()}
		for _, table := range tables {
			if err := clearSQLTable(backend, connStr, table); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(backend schema.DatabaseBackend, connStr, tableName string) error {
	if err := validateTableName(tableName); err != nil {
		return err
	}
	db, err := openDB(backend, connStr, "")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}
