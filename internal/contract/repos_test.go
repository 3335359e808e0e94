package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/gitnapped/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepoString(t *testing.T) {
	tests := []struct {
		input string
		want  RepoEntry
	}{
		{"/src/api", RepoEntry{Path: "/src/api"}},
		{"/src/api [Backend][Payments]", RepoEntry{Path: "/src/api", Category: "Backend", Project: "Payments"}},
		{"/src/api[Backend][Payments]", RepoEntry{Path: "/src/api", Category: "Backend", Project: "Payments"}},
		{"/src/api [Payments]", RepoEntry{Path: "/src/api", Project: "Payments"}},
		{"  /src/api  [ Backend ][ Payments ]  ", RepoEntry{Path: "/src/api", Category: "Backend", Project: "Payments"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRepoString(tt.input))
		})
	}
}

func TestParseRepoConfig_Grouped(t *testing.T) {
	data := []byte(`
author: Jane Doe
repos:
  work:
    - /src/api [Backend][Payments]
    - path: /src/web
      category: Frontend
      project: Storefront
  personal:
    - /src/dotfiles
    - path: /src/blog [Writing]
`)
	cfg, err := ParseRepoConfig(data)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", cfg.Author)
	require.Len(t, cfg.Groups, 2)
	assert.Equal(t, "work", cfg.Groups[0].Name)
	assert.Equal(t, "personal", cfg.Groups[1].Name)
	assert.Equal(t, []RepoEntry{
		{Path: "/src/api", Category: "Backend", Project: "Payments"},
		{Path: "/src/web", Category: "Frontend", Project: "Storefront"},
	}, cfg.Groups[0].Entries)
	assert.Equal(t, []RepoEntry{
		{Path: "/src/dotfiles"},
		{Path: "/src/blog", Project: "Writing"},
	}, cfg.Groups[1].Entries)
}

func TestParseRepoConfig_FlatList(t *testing.T) {
	cfg, err := ParseRepoConfig([]byte("repos:\n  - /a\n  - /b [P]\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Author)
	require.Len(t, cfg.Groups, 1)
	assert.Len(t, cfg.Groups[0].Entries, 2)
}

func TestParseRepoConfig_Errors(t *testing.T) {
	tests := map[string]string{
		"not yaml":          "repos: [unterminated",
		"scalar repos":      "repos: /src/api",
		"missing path":      "repos:\n  work:\n    - category: Backend\n",
		"nested list entry": "repos:\n  - [a, b]\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRepoConfig([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadRepoConfig(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRepoConfig(filepath.Join(t.TempDir(), "gitnapped.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
		assert.Contains(t, err.Error(), "--dir")
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gitnapped.yaml")
		require.NoError(t, os.WriteFile(path, []byte("author: A\nrepos:\n  g:\n    - /x\n"), 0o644))
		cfg, err := LoadRepoConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "A", cfg.Author)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gitnapped.yaml")
		require.NoError(t, os.WriteFile(path, []byte("repos: [oops"), 0o644))
		_, err := LoadRepoConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid YAML")
	})
}

func TestResolveRepositories(t *testing.T) {
	cfg := &RepoConfig{Groups: []RepoGroup{
		{Name: "a", Entries: []RepoEntry{
			{Path: "/src/api", Category: "Backend", Project: "Payments"},
			{Path: "/src/tools/"},
			{Path: ""},
		}},
		{Name: "b", Entries: []RepoEntry{
			{Path: "/src/api/", Category: "Other"},
			{Path: "/src/web", Project: "Storefront"},
		}},
	}}

	refs := ResolveRepositories(cfg)
	assert.Equal(t, []schema.RepositoryRef{
		{Path: "/src/api", Label: "Payments", Category: "Backend", Project: "Payments"},
		{Path: "/src/tools", Label: "tools", Category: schema.UncategorizedCategory, Project: schema.UnnamedProject},
		{Path: "/src/web", Label: "Storefront", Category: schema.UncategorizedCategory, Project: "Storefront"},
	}, refs)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, "src"), ExpandHome("~/src"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
	assert.Equal(t, "~user/src", ExpandHome("~user/src"))
}
