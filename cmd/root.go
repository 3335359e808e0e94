package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/huangsam/gitnapped/core"
	"github.com/huangsam/gitnapped/internal/contract"
	"github.com/huangsam/gitnapped/internal/iocache"
	"github.com/huangsam/gitnapped/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// profile holds profiling configuration.
var profile = &contract.ProfileConfig{}

// startProfiling starts CPU profiling if enabled.
func startProfiling() error {
	if !profile.Enabled {
		return nil
	}

	cpuFile, err := os.Create(profile.Prefix + ".cpu.prof")
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		return fmt.Errorf("could not start CPU profiling: %w", err)
	}

	// Memory profiling will be captured at the end
	_, err = fmt.Fprintf(os.Stderr, "Profiling enabled. CPU profile: %s.cpu.prof, Memory profile: %s.mem.prof\n", profile.Prefix, profile.Prefix)
	return err
}

// stopProfiling stops profiling and writes memory profile.
func stopProfiling() error {
	if !profile.Enabled {
		return nil
	}

	pprof.StopCPUProfile()

	memFile, err := os.Create(profile.Prefix + ".mem.prof")
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() { _ = memFile.Close() }()

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}

	_, err = fmt.Fprintf(os.Stderr, "Profiling complete. Use 'go tool pprof %s.cpu.prof' to analyze.\n", profile.Prefix)
	return err
}

// rootCmd analyzes the configured repositories.
var rootCmd = &cobra.Command{
	Use:   "gitnapped",
	Short: "Summarize commit activity and find the commits made outside working hours.",
	Long: `Gitnapped reads the commit history of every configured repository, filters it by
time window and author, and reports commits, files and lines changed per repository,
category and project, together with how often work spilled outside working hours.

Repositories come from gitnapped.yaml (or --config), or a single --dir.

Examples:
  # Last week of work across the configured repositories
  gitnapped --period 1W --categories --show-total-stats

  # One repository, every author, night owls shown first
  gitnapped --dir ~/src/api --all-authors --working-time 9AM-6PM --output json`,
	Version:            version,
	Args:               cobra.NoArgs,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	PreRunE:            sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return core.ExecuteGitnapped(cmd.Context(), cfg, iocache.Manager)
	},
}

// initConfig registers the settings file lookup, the environment and the defaults.
func initConfig() {
	viper.SetConfigName(".gitnapped") // Name of settings file (without extension)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")

	viper.SetEnvPrefix("GITNAPPED")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("working-time", contract.DefaultWorkingTime)
	viper.SetDefault("sort-by", schema.SortByCommits)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("repo-timeout", contract.DefaultRepoTimeout.String())
	viper.SetDefault("git-backend", schema.ExecGitBackend)
	viper.SetDefault("cache-backend", schema.SQLiteBackend)
	viper.SetDefault("cache-db-connect", "")
	viper.SetDefault("history-backend", "")
	viper.SetDefault("history-db-connect", "")
	viper.SetDefault("color", "yes")
}

// loadSettingsFile reads the optional .gitnapped settings file.
func loadSettingsFile() error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading settings file: %w", err)
		}
		// Settings file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// sharedSetup unmarshals config, runs validation and opens the stores.
// With dirFallback set, a missing repository config means the current directory.
func sharedSetup(dirFallback bool) error {
	contract.ProcessProfilingConfig(profile, viper.GetString("profile"))
	if err := startProfiling(); err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}

	// 1. Read settings file. This merges defaults, file, env, and flags.
	if err := loadSettingsFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	input.ConfigFile = viper.GetString("config")
	contract.SetDebug(input.Debug)

	if dirFallback && strings.TrimSpace(input.Dir) == "" && !repoConfigExists(input.ConfigFile) {
		input.Dir = "."
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	if !cfg.UseColors {
		color.NoColor = true
	}

	// 4. Initialize persistence layer with validated config
	if err := iocache.InitCaching(cfg.CacheBackend, cfg.CacheDBConnect, cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// sharedSetupWrapper wraps sharedSetup for Cobra's PreRunE.
func sharedSetupWrapper(_ *cobra.Command, _ []string) error {
	return sharedSetup(false)
}

// repoConfigExists reports whether the repository config file is present.
func repoConfigExists(path string) bool {
	if path == "" {
		path = contract.DefaultConfigName
	}
	_, err := os.Stat(contract.ExpandHome(path))
	return err == nil
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer iocache.CloseCaching()
	defer func() {
		if err := stopProfiling(); err != nil {
			contract.LogWarn("Failed to stop profiling", err)
		}
	}()

	return rootCmd.ExecuteContext(ctx)
}
