package contract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/gitnapped/schema"
	"gopkg.in/yaml.v3"
)

// DefaultConfigName is the repository config file looked up in the working directory.
const DefaultConfigName = "gitnapped.yaml"

// RepoEntry is one configured repository before defaults are applied.
type RepoEntry struct {
	Path     string `yaml:"path"`
	Category string `yaml:"category"`
	Project  string `yaml:"project"`
}

// RepoGroup is a named list of repositories, in file order.
type RepoGroup struct {
	Name    string
	Entries []RepoEntry
}

// RepoConfig is the parsed gitnapped.yaml.
type RepoConfig struct {
	Author string
	Groups []RepoGroup
}

type rawRepoConfig struct {
	Author string    `yaml:"author"`
	Repos  yaml.Node `yaml:"repos"`
}

// LoadRepoConfig reads and parses the repository config file.
func LoadRepoConfig(path string) (*RepoConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file %q not found. Create it or pass --dir to analyze a single repository", path)
		}
		return nil, fmt.Errorf("error reading config file %q: %w", path, err)
	}
	cfg, err := ParseRepoConfig(data)
	if err != nil {
		return nil, fmt.Errorf("invalid YAML in config file %q: %w", path, err)
	}
	return cfg, nil
}

// ParseRepoConfig parses config YAML. The repos key is either a mapping of
// group name to entries, or a flat list of entries.
func ParseRepoConfig(data []byte) (*RepoConfig, error) {
	var raw rawRepoConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	cfg := &RepoConfig{Author: strings.TrimSpace(raw.Author)}
	switch raw.Repos.Kind {
	case 0:
		// no repos key
	case yaml.MappingNode:
		for i := 0; i+1 < len(raw.Repos.Content); i += 2 {
			name := raw.Repos.Content[i].Value
			entries, err := decodeEntries(raw.Repos.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", name, err)
			}
			cfg.Groups = append(cfg.Groups, RepoGroup{Name: name, Entries: entries})
		}
	case yaml.SequenceNode:
		entries, err := decodeEntries(&raw.Repos)
		if err != nil {
			return nil, err
		}
		cfg.Groups = append(cfg.Groups, RepoGroup{Entries: entries})
	default:
		return nil, fmt.Errorf("line %d: repos must be a mapping or a list", raw.Repos.Line)
	}
	return cfg, nil
}

// decodeEntries accepts a list of entries or a single entry.
func decodeEntries(node *yaml.Node) ([]RepoEntry, error) {
	if node.Kind != yaml.SequenceNode {
		e, err := decodeEntry(node)
		if err != nil {
			return nil, err
		}
		return []RepoEntry{e}, nil
	}
	entries := make([]RepoEntry, 0, len(node.Content))
	for _, item := range node.Content {
		e, err := decodeEntry(item)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func decodeEntry(node *yaml.Node) (RepoEntry, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return ParseRepoString(node.Value), nil
	case yaml.MappingNode:
		var e RepoEntry
		if err := node.Decode(&e); err != nil {
			return RepoEntry{}, err
		}
		if strings.TrimSpace(e.Path) == "" {
			return RepoEntry{}, fmt.Errorf("line %d: repository entry is missing path", node.Line)
		}
		// Annotations in the path still apply when explicit fields are absent.
		parsed := ParseRepoString(e.Path)
		if e.Category == "" {
			e.Category = parsed.Category
		}
		if e.Project == "" {
			e.Project = parsed.Project
		}
		e.Path = parsed.Path
		return e, nil
	default:
		return RepoEntry{}, fmt.Errorf("line %d: repository entry must be a string or a mapping", node.Line)
	}
}

// ParseRepoString splits "path [Category][Project]" into its parts.
// A single annotation names the project.
func ParseRepoString(s string) RepoEntry {
	idx := strings.Index(s, "[")
	if idx < 0 {
		return RepoEntry{Path: strings.TrimSpace(s)}
	}

	entry := RepoEntry{Path: strings.TrimSpace(s[:idx])}
	var labels []string
	for part := range strings.SplitSeq(s[idx+1:], "[") {
		label, _, _ := strings.Cut(part, "]")
		labels = append(labels, strings.TrimSpace(label))
	}
	switch {
	case len(labels) >= 2:
		entry.Category, entry.Project = labels[0], labels[1]
	case len(labels) == 1:
		entry.Project = labels[0]
	}
	return entry
}

// ResolveRepositories applies defaults, expands ~ and drops duplicate paths.
func ResolveRepositories(cfg *RepoConfig) []schema.RepositoryRef {
	seen := make(map[string]struct{})
	var refs []schema.RepositoryRef
	for _, g := range cfg.Groups {
		for _, e := range g.Entries {
			ref := NewRepositoryRef(e)
			if ref.Path == "" {
				continue
			}
			if _, dup := seen[ref.Path]; dup {
				Logger().Debugf("Skipping duplicate repository %s", ref.Path)
				continue
			}
			seen[ref.Path] = struct{}{}
			refs = append(refs, ref)
		}
	}
	return refs
}

// NewRepositoryRef builds a resolved reference from a config entry.
func NewRepositoryRef(e RepoEntry) schema.RepositoryRef {
	ref := schema.RepositoryRef{
		Path:     ExpandHome(e.Path),
		Category: e.Category,
		Project:  e.Project,
		Label:    e.Project,
	}
	if ref.Path != "" {
		ref.Path = filepath.Clean(ref.Path)
	}
	if ref.Category == "" {
		ref.Category = schema.UncategorizedCategory
	}
	if ref.Project == "" {
		ref.Project = schema.UnnamedProject
		ref.Label = filepath.Base(ref.Path)
	}
	return ref
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
