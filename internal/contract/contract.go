// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/gitnapped/schema"
)

// GitClient defines the operations needed to read commit activity from a repository.
// This allows the core analysis logic to be tested without needing a real git executable.
//
// GetActivityLog output uses one header line per commit, followed by numstat lines:
//
//	--<hash>|<author date RFC3339>|<author name>
//	<insertions>\t<deletions>\t<path>
type GitClient interface {
	// GetRepoRoot returns the absolute path to the root of the repository
	// containing the given path, or an error if it is not a repository.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// GetActivityLog returns the raw commit log between since and until.
	GetActivityLog(ctx context.Context, repoPath string, since, until time.Time) ([]byte, error)

	// ListSubmodules returns submodule paths relative to the repository root.
	ListSubmodules(ctx context.Context, repoPath string) ([]string, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetActivityStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking analysis runs and their per-repo results.
type HistoryStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, window schema.AnalysisWindow, author string, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalRepos int) error

	// RecordRepoStats stores the counters for one repository in a run
	RecordRepoStats(runID int64, stats schema.RepoStats) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllRepoStats returns every recorded per-repo row
	GetAllRepoStats() ([]schema.RepoStatsRecord, error)

	// Close closes the underlying connection
	Close() error
}
