package cmd

import (
	"errors"
	"fmt"

	"github.com/huangsam/gitnapped/internal/contract"
	"github.com/huangsam/gitnapped/internal/iocache"
	"github.com/huangsam/gitnapped/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeSettings reads and validates one backend/connection pair from viper.
func storeSettings(backendKey, connKey string) (schema.DatabaseBackend, string, error) {
	if err := loadSettingsFile(); err != nil {
		return "", "", err
	}
	backend, err := contract.ParseDatabaseBackend(viper.GetString(backendKey))
	if err != nil {
		return "", "", err
	}
	connStr := viper.GetString(connKey)
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := storeSettings("cache-backend", "cache-db-connect")
	if err != nil {
		return err
	}

	// Initialize caching with the loaded config (no history tracking for cache commands)
	if err := iocache.InitCaching(backend, connStr, schema.NoneBackend, ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// sqliteFilePath returns the SQLite file a store uses.
func sqliteFilePath(connStr, fallback string) string {
	if connStr != "" {
		return connStr
	}
	return fallback
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by the analysis. This avoids loading the repository
// config for simple cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the commit cache (improves performance)",
	Long: `Manage the cache of parsed commit logs that speeds up repeated analyses.

Entries are keyed by repository path, HEAD commit, the hour-aligned time window and
the git backend, so a new commit or a different window never reads stale data.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached commit logs",
	Long: `Delete all cached commit logs from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  gitnapped cache clear

  # Clear MySQL cache (set connection string via env variable)
  GITNAPPED_CACHE_BACKEND=mysql GITNAPPED_CACHE_DB_CONNECT="..." gitnapped cache clear`,
	PreRunE: cacheSetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Release the SQLite handle before removing its file.
		iocache.CloseCaching()
		path := sqliteFilePath(cfg.CacheDBConnect, contract.GetCacheDBFilePath())
		if err := iocache.ClearCache(cfg.CacheBackend, path, cfg.CacheDBConnect); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared successfully.")
		return nil
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show the backend, the number of cached entries, the newest and oldest
entry timestamps and the table size.`,
	PreRunE: cacheSetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store := iocache.Manager.GetActivityStore()
		if store == nil {
			return errors.New("caching is disabled; set --cache-backend to inspect it")
		}
		status, err := store.GetStatus()
		if err != nil {
			return fmt.Errorf("failed to get cache status: %w", err)
		}
		iocache.PrintCacheStatus(cmd.OutOrStdout(), status)
		return nil
	},
}
