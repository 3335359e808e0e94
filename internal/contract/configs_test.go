package contract

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/gitnapped/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baseInput returns a valid dir-mode input, as viper would fill it with defaults.
func baseInput(t *testing.T) *ConfigRawInput {
	t.Helper()
	return &ConfigRawInput{
		Dir:         t.TempDir(),
		Period:      "6M",
		WorkingTime: DefaultWorkingTime,
		SortBy:      "commits",
		Output:      "text",
		Color:       "yes",
		Workers:     4,
		GitBackend:  "exec",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
		check       func(*testing.T, *Config)
	}{
		{
			name: "valid minimal config",
			check: func(t *testing.T, cfg *Config) {
				require.Len(t, cfg.Repos, 1)
				assert.Equal(t, schema.UncategorizedCategory, cfg.Repos[0].Category)
				assert.Equal(t, schema.UnnamedProject, cfg.Repos[0].Project)
				assert.True(t, cfg.AllAuthors, "dir mode without --author counts everyone")
				assert.Equal(t, schema.SortByCommits, cfg.SortKey)
				assert.Equal(t, schema.GroupNone, cfg.Grouping)
				assert.Equal(t, schema.TextOut, cfg.Output)
				assert.Equal(t, schema.NoneBackend, cfg.CacheBackend)
				assert.Equal(t, DefaultRepoTimeout, cfg.RepoTimeout)
				assert.Equal(t, 9*60, cfg.Hours.StartMinute)
				assert.Nil(t, cfg.Location)
				assert.True(t, cfg.UseColors)
			},
		},
		{
			name:   "author flag",
			mutate: func(in *ConfigRawInput) { in.Author = " Jane Doe " },
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.AllAuthors)
				assert.Equal(t, "Jane Doe", cfg.Author)
			},
		},
		{
			name: "all-authors beats author",
			mutate: func(in *ConfigRawInput) {
				in.Author = "Jane Doe"
				in.AllAuthors = true
			},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.AllAuthors)
				assert.Empty(t, cfg.Author)
			},
		},
		{
			name:   "json shorthand",
			mutate: func(in *ConfigRawInput) { in.JSON = true },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.JSONOut, cfg.Output)
			},
		},
		{
			name: "grouping and sort",
			mutate: func(in *ConfigRawInput) {
				in.Categories = true
				in.Projects = true
				in.SortBy = "LINES"
				in.MostActiveRepos = 3
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.GroupBoth, cfg.Grouping)
				assert.Equal(t, schema.SortByLines, cfg.SortKey)
				assert.Equal(t, 3, cfg.MostActiveRepos)
			},
		},
		{
			name: "timezone and timeout",
			mutate: func(in *ConfigRawInput) {
				in.Timezone = "UTC"
				in.RepoTimeout = "30s"
			},
			check: func(t *testing.T, cfg *Config) {
				require.NotNil(t, cfg.Location)
				assert.Equal(t, "UTC", cfg.Location.String())
				assert.Equal(t, 30*time.Second, cfg.RepoTimeout)
			},
		},
		{
			name:        "invalid sort key",
			mutate:      func(in *ConfigRawInput) { in.SortBy = "stars" },
			expectError: true,
		},
		{
			name:        "invalid output",
			mutate:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectError: true,
		},
		{
			name:        "parquet without file",
			mutate:      func(in *ConfigRawInput) { in.Output = "parquet" },
			expectError: true,
		},
		{
			name:        "zero workers",
			mutate:      func(in *ConfigRawInput) { in.Workers = 0 },
			expectError: true,
		},
		{
			name:        "negative most-active-repos",
			mutate:      func(in *ConfigRawInput) { in.MostActiveRepos = -1 },
			expectError: true,
		},
		{
			name:        "invalid working time",
			mutate:      func(in *ConfigRawInput) { in.WorkingTime = "late" },
			expectError: true,
		},
		{
			name:        "invalid period",
			mutate:      func(in *ConfigRawInput) { in.Period = "forever" },
			expectError: true,
		},
		{
			name:        "invalid timezone",
			mutate:      func(in *ConfigRawInput) { in.Timezone = "Mars/Olympus" },
			expectError: true,
		},
		{
			name:        "invalid repo timeout",
			mutate:      func(in *ConfigRawInput) { in.RepoTimeout = "-5s" },
			expectError: true,
		},
		{
			name:        "invalid git backend",
			mutate:      func(in *ConfigRawInput) { in.GitBackend = "svn" },
			expectError: true,
		},
		{
			name:        "invalid color",
			mutate:      func(in *ConfigRawInput) { in.Color = "sometimes" },
			expectError: true,
		},
		{
			name: "mysql history without connection string",
			mutate: func(in *ConfigRawInput) {
				in.HistoryBackend = "mysql"
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := baseInput(t)
			if tt.mutate != nil {
				tt.mutate(input)
			}
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestProcessAndValidate_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gitnapped.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
author: Config Author
repos:
  work:
    - /src/api [Backend][Payments]
    - /src/web [Frontend]
`), 0o644))

	input := baseInput(t)
	input.Dir = ""
	input.ConfigFile = path

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	require.Len(t, cfg.Repos, 2)
	assert.Equal(t, "Backend", cfg.Repos[0].Category)
	assert.Equal(t, "Frontend", cfg.Repos[1].Project)
	assert.Equal(t, "Config Author", cfg.Author)
	assert.False(t, cfg.AllAuthors)

	// The flag beats the config file.
	input.Author = "Flag Author"
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, "Flag Author", cfg.Author)
}

func TestProcessAndValidate_MissingConfig(t *testing.T) {
	input := baseInput(t)
	input.Dir = ""
	input.ConfigFile = filepath.Join(t.TempDir(), "missing.yaml")

	err := ProcessAndValidate(&Config{}, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestProcessAndValidate_EmptyConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitnapped.yaml")
	require.NoError(t, os.WriteFile(path, []byte("author: someone\n"), 0o644))

	input := baseInput(t)
	input.Dir = ""
	input.ConfigFile = path

	err := ProcessAndValidate(&Config{}, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no repositories")
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.DatabaseBackend
		connStr     string
		expectError bool
	}{
		{"sqlite needs nothing", schema.SQLiteBackend, "", false},
		{"none needs nothing", schema.NoneBackend, "", false},
		{"valid mysql", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/gitnapped", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/gitnapped", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"valid postgres", schema.PostgreSQLBackend, "host=localhost port=5432 user=u password=p dbname=gitnapped", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBackendConfigs_SharedSQLiteFile(t *testing.T) {
	input := &ConfigRawInput{
		CacheBackend:     "sqlite",
		CacheDBConnect:   "/tmp/shared.db",
		HistoryBackend:   "sqlite",
		HistoryDBConnect: "/tmp/shared.db",
	}
	err := validateBackendConfigs(&Config{}, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different SQLite database files")

	input.HistoryDBConnect = "/tmp/other.db"
	assert.NoError(t, validateBackendConfigs(&Config{}, input))
}

func TestResolveAuthor(t *testing.T) {
	all, author := resolveAuthor(false, "", "")
	assert.True(t, all)
	assert.Empty(t, author)

	all, author = resolveAuthor(false, "", "Config")
	assert.False(t, all)
	assert.Equal(t, "Config", author)
}

func TestConfigFetchBounds(t *testing.T) {
	cfg := &Config{Window: schema.AnalysisWindow{
		Since: time.Date(2024, 1, 1, 9, 45, 0, 0, time.UTC),
		Until: time.Date(2024, 1, 8, 10, 15, 0, 0, time.UTC),
	}}
	assert.Equal(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), cfg.GetFetchSince())
	assert.Equal(t, time.Date(2024, 1, 8, 11, 0, 0, 0, time.UTC), cfg.GetFetchUntil())

	cfg.Window.Until = time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, cfg.Window.Until, cfg.GetFetchUntil())
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Repos: []schema.RepositoryRef{{Path: "/a"}}}
	clone := cfg.Clone()
	clone.Repos[0].Path = "/b"
	assert.Equal(t, "/a", cfg.Repos[0].Path)
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	ProcessProfilingConfig(profile, "  ")
	assert.False(t, profile.Enabled)

	ProcessProfilingConfig(profile, "out/run")
	assert.True(t, profile.Enabled)
	assert.Equal(t, "out/run", profile.Prefix)
}
