package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the run history store.
type HistoryStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalCommits  int64            `json:"total_commits"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the gitnapped_runs table.
type RunRecord struct {
	RunID        int64
	StartTime    time.Time
	EndTime      *time.Time
	DurationMs   *int64
	WindowSince  time.Time
	WindowUntil  time.Time
	Author       string
	TotalRepos   int32
	ConfigParams *string
}

// RepoStatsRecord represents a row from the gitnapped_repo_stats table.
type RepoStatsRecord struct {
	RunID          int64
	RepoPath       string
	Label          string
	Category       string
	Project        string
	CommitCount    int32
	FilesChanged   int32
	Insertions     int32
	Deletions      int32
	GitnappedCount int32
	MostActiveDay  *string
}
