// Package cmd defines the command-line interface for gitnapped.
package cmd

import (
	"github.com/huangsam/gitnapped/internal/contract"
	"github.com/huangsam/gitnapped/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)

	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	flags := rootCmd.PersistentFlags()

	// Repositories and filters
	flags.String("config", "", "Path to the repository config file (default ./"+contract.DefaultConfigName+")")
	flags.String("dir", "", "Analyze a single repository directory instead of the config file")
	flags.String("since", "", "Start date (YYYY-MM-DD), inclusive")
	flags.String("until", "", "End date (YYYY-MM-DD), exclusive")
	flags.String("period", "", "Relative period such as 6M, 2Y, 3W, 5D or 12H (ignored when --since/--until are set)")
	flags.String("author", "", "Only count commits by this author name")
	flags.Bool("all-authors", false, "Count commits from every author")
	flags.String("working-time", contract.DefaultWorkingTime, "Working hours such as 09:00-17:00, 9AM-5PM or 22:00-06:00")
	flags.String("timezone", "", "IANA time zone for the local clock (default: each commit's own offset)")

	// Reduction
	flags.String("sort-by", string(schema.SortByCommits), "Sort repositories by: commits or files or lines")
	flags.Bool("categories", false, "Group statistics by category")
	flags.Bool("projects", false, "Group statistics by project")
	flags.Bool("active-only", false, "Only list repositories with commits in the window")
	flags.Int("most-active-repos", 0, "Only list the N most active repositories (0 = all)")
	flags.Bool("show-total-stats", false, "Print statistics across all analyzed repositories")
	flags.Bool("submodules", false, "Include commits of each repository's submodules")

	// Output
	flags.Bool("repo-details", false, "Print the gitnapped commits of each repository")
	flags.Bool("filetypes", false, "Print the most changed file types")
	flags.Bool("most-active-day", false, "Print the day with the most commits")
	flags.Bool("silent", false, "Suppress header and footer lines")
	flags.Bool("debug", false, "Enable debug logging")
	flags.Bool("json", false, "Shorthand for --output json")
	flags.String("output", string(schema.TextOut), "Output format: text or json or csv or parquet")
	flags.String("output-file", "", "Optional path to write output to")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")

	// Execution
	flags.Int("workers", contract.DefaultWorkers, "Number of repositories analyzed concurrently")
	flags.String("repo-timeout", contract.DefaultRepoTimeout.String(), "Time limit for analyzing one repository")
	flags.String("git-backend", string(schema.ExecGitBackend), "Git backend: exec or gogit")
	flags.String("profile", "", "Enable profiling and write profiles to files with this prefix")

	// Persistence
	flags.String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	flags.String("cache-db-connect", "", "Database connection string for the cache (e.g., user:pass@tcp(host:port)/dbname)")
	flags.String("history-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	flags.String("history-db-connect", "", "Database connection string for run history (must differ from cache-db-connect)")

	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	historyMigrateCmd.Flags().Int("version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
}
