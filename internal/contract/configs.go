package contract

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/gitnapped/schema"
)

// Default values for configuration.
const (
	DefaultRepoTimeout = 2 * time.Minute
	MaxWorkers         = 256
)

// CacheGranularity defines the time granularity for caching commit records.
// This ensures consistent cache key generation and time window alignment across
// the application and tests.
const CacheGranularity = time.Hour

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	Repos      []schema.RepositoryRef
	Window     schema.AnalysisWindow
	Author     string // empty when AllAuthors
	AllAuthors bool
	Hours      schema.WorkingHours
	Location   *time.Location // nil = each commit's own offset

	SortKey         schema.SortKey
	Grouping        schema.GroupingMode
	ActiveOnly      bool
	MostActiveRepos int
	ShowTotals      bool
	Submodules      bool

	RepoDetails   bool
	FileTypes     bool
	MostActiveDay bool
	Silent        bool
	Debug         bool
	Output        schema.OutputMode
	OutputFile    string
	Width         int // Terminal width override (0 = auto-detect)
	UseColors     bool

	Workers     int
	RepoTimeout time.Duration
	GitBackend  schema.GitBackend

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ProcessProfilingConfig enables profiling when a prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) {
	if prefix := strings.TrimSpace(profilePrefix); prefix != "" {
		profile.Enabled = true
		profile.Prefix = prefix
	}
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from the config file viper resolved, so no tag
	ConfigFile string

	Dir         string `mapstructure:"dir"`
	Since       string `mapstructure:"since"`
	Until       string `mapstructure:"until"`
	Period      string `mapstructure:"period"`
	Author      string `mapstructure:"author"`
	AllAuthors  bool   `mapstructure:"all-authors"`
	WorkingTime string `mapstructure:"working-time"`
	Timezone    string `mapstructure:"timezone"`

	SortBy          string `mapstructure:"sort-by"`
	Categories      bool   `mapstructure:"categories"`
	Projects        bool   `mapstructure:"projects"`
	ActiveOnly      bool   `mapstructure:"active-only"`
	MostActiveRepos int    `mapstructure:"most-active-repos"`
	ShowTotalStats  bool   `mapstructure:"show-total-stats"`
	Submodules      bool   `mapstructure:"submodules"`

	RepoDetails   bool   `mapstructure:"repo-details"`
	FileTypes     bool   `mapstructure:"filetypes"`
	MostActiveDay bool   `mapstructure:"most-active-day"`
	Silent        bool   `mapstructure:"silent"`
	Debug         bool   `mapstructure:"debug"`
	JSON          bool   `mapstructure:"json"`
	Output        string `mapstructure:"output"`
	OutputFile    string `mapstructure:"output-file"`
	Width         int    `mapstructure:"width"`
	Color         string `mapstructure:"color"`

	Workers     int    `mapstructure:"workers"`
	RepoTimeout string `mapstructure:"repo-timeout"`
	GitBackend  string `mapstructure:"git-backend"`

	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Repos != nil {
		clone.Repos = make([]schema.RepositoryRef, len(c.Repos))
		copy(clone.Repos, c.Repos)
	}
	return &clone
}

// GetFetchSince returns the window start truncated to the caching granularity.
// Commit records are fetched from here so cached entries line up across runs.
func (c *Config) GetFetchSince() time.Time {
	return c.Window.Since.Truncate(CacheGranularity)
}

// GetFetchUntil returns the window end rounded up to the caching granularity.
func (c *Config) GetFetchUntil() time.Time {
	t := c.Window.Until.Truncate(CacheGranularity)
	if t.Before(c.Window.Until) {
		t = t.Add(CacheGranularity)
	}
	return t
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input, time.Now()); err != nil {
		return err
	}
	if err := processRepositories(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs processes and validates all non-window, non-repository fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.ActiveOnly = input.ActiveOnly
	cfg.ShowTotals = input.ShowTotalStats
	cfg.Submodules = input.Submodules
	cfg.RepoDetails = input.RepoDetails
	cfg.FileTypes = input.FileTypes
	cfg.MostActiveDay = input.MostActiveDay
	cfg.Silent = input.Silent
	cfg.Debug = input.Debug
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Grouping = schema.NewGroupingMode(input.Categories, input.Projects)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Reducer options ---
	cfg.SortKey = schema.SortKey(strings.ToLower(strings.TrimSpace(input.SortBy)))
	if cfg.SortKey == "" {
		cfg.SortKey = schema.SortByCommits
	}
	if _, ok := schema.ValidSortKeys[cfg.SortKey]; !ok {
		return fmt.Errorf("invalid sort key '%s'. must be commits, files, lines", input.SortBy)
	}
	if input.MostActiveRepos < 0 {
		return fmt.Errorf("most-active-repos cannot be negative (received %d)", input.MostActiveRepos)
	}
	cfg.MostActiveRepos = input.MostActiveRepos

	// --- 2. Working hours and clock ---
	hours, err := ParseWorkingHours(input.WorkingTime)
	if err != nil {
		return err
	}
	cfg.Hours = hours

	cfg.Location = nil
	if tz := strings.TrimSpace(input.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w", tz, err)
		}
		cfg.Location = loc
	}

	// --- 3. Workers Validation ---
	if input.Workers <= 0 || input.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d (received %d)", MaxWorkers, input.Workers)
	}
	cfg.Workers = input.Workers

	cfg.RepoTimeout = DefaultRepoTimeout
	if input.RepoTimeout != "" {
		d, err := time.ParseDuration(input.RepoTimeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid repo-timeout '%s'. Expected a positive duration such as 90s or 2m", input.RepoTimeout)
		}
		cfg.RepoTimeout = d
	}

	cfg.GitBackend = schema.GitBackend(strings.ToLower(input.GitBackend))
	if cfg.GitBackend == "" {
		cfg.GitBackend = schema.ExecGitBackend
	}
	if _, ok := schema.ValidGitBackends[cfg.GitBackend]; !ok {
		return fmt.Errorf("invalid git backend '%s'. must be exec, gogit", input.GitBackend)
	}

	// --- 4. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if input.JSON {
		cfg.Output = schema.JSONOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, json, csv, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	// --- 5. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseDatabaseBackend normalizes a backend name. Empty means none.
func ParseDatabaseBackend(s string) (schema.DatabaseBackend, error) {
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(s)))
	if backend == "" {
		return schema.NoneBackend, nil
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", s)
	}
	return backend, nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	var err error
	if cfg.CacheBackend, err = ParseDatabaseBackend(input.CacheBackend); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	if cfg.HistoryBackend, err = ParseDatabaseBackend(input.HistoryBackend); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// Cache and history must not share a SQLite file, since clearing one deletes it.
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// processTimeRange resolves the analysis window.
func processTimeRange(cfg *Config, input *ConfigRawInput, now time.Time) error {
	w, err := ResolveWindow(now, input.Since, input.Until, input.Period)
	if err != nil {
		return err
	}
	cfg.Window = w
	return nil
}

// processRepositories resolves the repository list and the author filter.
func processRepositories(cfg *Config, input *ConfigRawInput) error {
	var configAuthor string
	if dir := strings.TrimSpace(input.Dir); dir != "" {
		abs, err := filepath.Abs(ExpandHome(dir))
		if err != nil {
			return fmt.Errorf("invalid --dir %q: %w", dir, err)
		}
		cfg.Repos = []schema.RepositoryRef{NewRepositoryRef(RepoEntry{Path: abs})}
	} else {
		path := input.ConfigFile
		if path == "" {
			path = DefaultConfigName
		}
		repoCfg, err := LoadRepoConfig(path)
		if err != nil {
			return err
		}
		cfg.Repos = ResolveRepositories(repoCfg)
		configAuthor = repoCfg.Author
		if len(cfg.Repos) == 0 {
			return fmt.Errorf("no repositories configured in %q", path)
		}
	}

	cfg.AllAuthors, cfg.Author = resolveAuthor(input.AllAuthors, input.Author, configAuthor)
	if cfg.AllAuthors && !input.AllAuthors && input.Dir == "" {
		LogWarn("No author configured; counting commits from all authors", nil)
	}
	return nil
}

// resolveAuthor applies the author priority: --all-authors, then --author, then the config file.
func resolveAuthor(allAuthors bool, flagAuthor, configAuthor string) (bool, string) {
	if allAuthors {
		return true, ""
	}
	if a := strings.TrimSpace(flagAuthor); a != "" {
		return false, a
	}
	if a := strings.TrimSpace(configAuthor); a != "" {
		return false, a
	}
	return true, ""
}
