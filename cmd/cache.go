package cmd

import (
	"errors"
	"fmt"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/internal/iocache"
	"github.com/huangsam/commitpulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// The registry is not opened for cache commands
	if err := iocache.InitStores(backend, connStr, "", "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	return cacheSetup()
}

// loadConfigFile reads the config file when present. initConfig already set its name and paths.
func loadConfigFile() error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by view commands. This skips the registry and
// the scope validation for simple cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the commit statistics and narrative cache",
	Long: `Manage the cache of per-commit line statistics and shipped narratives.

Commit statistics never change once a commit exists, so they are cached
forever and only fetched from the provider on a miss.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status         - Show cache statistics and connection info
  clear          - Remove all cached data
  export         - Export cached data to Parquet files
  migrate        - Run cache schema migrations
  forget-product - Remove the cached narratives of one product

Examples:
  # Check cache status
  commitpulse cache status

  # Clear the cache
  commitpulse cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached statistics and narratives",
	Long: `Delete all cached data from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache tables

Examples:
  # Clear SQLite cache (default)
  commitpulse cache clear

  # Clear MySQL cache (set connection string via env variable)
  COMMITPULSE_CACHE_BACKEND=mysql COMMITPULSE_CACHE_DB_CONNECT="..." commitpulse cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the open handles before the file or tables go away
		iocache.CloseStores()
		dbFilePath := contract.GetCacheDBFilePath()
		if cfg.CacheBackend == schema.SQLiteBackend && cfg.CacheDBConnect != "" {
			dbFilePath = cfg.CacheDBConnect
		}
		if err := iocache.ClearCache(cfg.CacheBackend, dbFilePath, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show the backend, entry counts, entry age and size of each cache table.

Examples:
  commitpulse cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetStatsStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(status)
		fmt.Println()

		status, err = iocache.Manager.GetNarrativeStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get narrative status", err)
		}
		iocache.PrintCacheStatus(status)
	},
}

// cacheExportCmd exports the cache to Parquet.
var cacheExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export cached data to Parquet files",
	Long: `Write the commit statistics and shipped narratives to two Parquet files
named after --output-file.

Examples:
  # Produces cache.commit_stats.parquet and cache.shipped_summaries.parquet
  commitpulse cache export --output-file cache`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteCacheExport(rootCtx, viper.GetString("output-file")); err != nil {
			contract.LogFatal("Failed to export cache", err)
		}
	},
}

// cacheMigrateCmd runs cache migrations.
var cacheMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run cache schema migrations",
	Long: `Migrate the cache schema to the latest or a specific version.

Examples:
  # Migrate to the latest version
  commitpulse cache migrate

  # Roll back everything
  commitpulse cache migrate --target-version 0`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfigFile()
	},
	Run: func(cmd *cobra.Command, _ []string) {
		backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
		connStr := viper.GetString("cache-db-connect")
		if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
			contract.LogFatal("Invalid cache configuration", err)
		}
		target, _ := cmd.Flags().GetInt("target-version")
		if err := iocache.Migrate(iocache.CacheMigrations, backend, connStr, target); err != nil {
			contract.LogFatal("Failed to migrate cache", err)
		}
	},
}

// cacheForgetProductCmd removes one product's narratives.
var cacheForgetProductCmd = &cobra.Command{
	Use:   "forget-product",
	Short: "Remove the cached narratives of a product",
	Long: `Delete every cached shipped narrative of the product given by --product.
The next dashboard shows the product without a narrative until it is regenerated.

Examples:
  commitpulse cache forget-product --product web`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		productID := viper.GetString("product")
		if productID == "" {
			contract.LogFatal("Cannot forget product", errors.New("--product is required"))
		}
		if err := iocache.Manager.GetNarrativeStore().DeleteByProduct(rootCtx, productID); err != nil {
			contract.LogFatal("Cannot forget product", err)
		}
		fmt.Printf("Removed cached narratives of %s.\n", productID)
	},
}
