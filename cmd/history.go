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

// historySetup loads minimal configuration needed for run history operations.
func historySetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := storeSettings("history-backend", "history-db-connect")
	if err != nil {
		return err
	}

	if err := iocache.InitCaching(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historyMigrateSetup loads the history backend without opening the store,
// so migrations can run on a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := storeSettings("history-backend", "history-db-connect")
	if err != nil {
		return err
	}
	if backend == schema.NoneBackend {
		return errors.New("set --history-backend to run migrations")
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyStore returns the open run history store.
func historyStore() (contract.HistoryStore, error) {
	store := iocache.Manager.GetHistoryStore()
	if store == nil {
		return nil, errors.New("history tracking is disabled; set --history-backend to use it")
	}
	return store, nil
}

// historyCmd focused on run history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded analysis runs and exports",
	Long: `Manage the history of analysis runs.

When --history-backend is set, every run stores its window, author, settings and
the counters of each analyzed repository.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show run history statistics
  export  - Export runs to Parquet for analytics
  clear   - Remove all recorded runs
  migrate - Run database schema migrations`,
}

// historyClearCmd clears the run history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs",
	Long: `Delete all recorded runs and per-repository rows.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  gitnapped history export --output-file backup.parquet
  gitnapped history clear`,
	PreRunE: historySetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		iocache.CloseCaching()
		path := sqliteFilePath(cfg.HistoryDBConnect, contract.GetHistoryDBFilePath())
		if err := iocache.ClearHistory(cfg.HistoryBackend, path, cfg.HistoryDBConnect); err != nil {
			return fmt.Errorf("failed to clear run history: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Run history cleared successfully.")
		return nil
	},
}

// historyStatusCmd shows run history status.
var historyStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display run history statistics and connection details",
	PreRunE: historySetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := historyStore()
		if err != nil {
			return err
		}
		status, err := store.GetStatus()
		if err != nil {
			return fmt.Errorf("failed to get history status: %w", err)
		}
		iocache.PrintHistoryStatus(cmd.OutOrStdout(), status)
		return nil
	},
}

// historyExportCmd exports run history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs to Parquet for BI tools and analytics",
	Long: `Export all recorded runs to Parquet.

Two files are written next to --output-file:
  <name>.runs.parquet       - one row per run
  <name>.repo_stats.parquet - one row per analyzed repository per run

Examples:
  gitnapped history export --output-file gitnapped.parquet
  duckdb -c "SELECT * FROM read_parquet('gitnapped.repo_stats.parquet') LIMIT 10"`,
	PreRunE: historySetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := historyStore()
		if err != nil {
			return err
		}
		return iocache.ExportHistory(cmd.OutOrStdout(), store, cfg.OutputFile)
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the run history store.

By default, migrates to the latest version. Use --version for a specific version;
--version 0 rolls back every migration.

Examples:
  gitnapped history migrate --history-backend sqlite
  gitnapped history migrate --history-backend postgresql --version 1`,
	PreRunE: historyMigrateSetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		target, err := cmd.Flags().GetInt("version")
		if err != nil {
			return err
		}
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, target); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Migrations completed successfully.")
		return nil
	},
}
