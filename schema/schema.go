// Package schema has the models, enums and errors shared by every part of gitnapped.
package schema

import "time"

// RepositoryRef identifies a configured repository and the groups it belongs to.
type RepositoryRef struct {
	Path     string `json:"path"`
	Label    string `json:"label"`
	Category string `json:"category"`
	Project  string `json:"project"`
}

// FileDelta is the numstat entry for a single file touched by a commit.
type FileDelta struct {
	Path       string `json:"path"`
	Extension  string `json:"extension"`
	Insertions int    `json:"insertions"`
	Deletions  int    `json:"deletions"`
}

// CommitRecord is one parsed commit as produced by the VCS adapter.
// Timestamp keeps the offset recorded by the author.
type CommitRecord struct {
	Hash       string      `json:"hash"`
	AuthorName string      `json:"author_name"`
	Timestamp  time.Time   `json:"timestamp"`
	Files      []FileDelta `json:"files"`
	Insertions int         `json:"insertions"`
	Deletions  int         `json:"deletions"`
}

// AnalysisWindow is the half-open interval [Since, Until).
type AnalysisWindow struct {
	Since time.Time `json:"since"`
	Until time.Time `json:"until"`
}

// Contains reports whether t falls inside the window.
func (w AnalysisWindow) Contains(t time.Time) bool {
	return !t.Before(w.Since) && t.Before(w.Until)
}

// WorkingHours is a daily window expressed in minutes since midnight.
// EndMinute <= StartMinute means the window wraps past midnight.
type WorkingHours struct {
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

// GitnappedEvent is a commit made outside working hours.
type GitnappedEvent struct {
	Commit     CommitRecord  `json:"commit"`
	Repository RepositoryRef `json:"repository"`
	LocalTime  time.Time     `json:"local_time"`
}

// Stats is the counter block shared by repository and group statistics.
type Stats struct {
	CommitCount    int            `json:"commit_count"`
	FilesChanged   int            `json:"files_changed"`
	Insertions     int            `json:"insertions"`
	Deletions      int            `json:"deletions"`
	FileTypes      map[string]int `json:"file_types"`
	CommitsByDate  map[string]int `json:"commits_by_date"`
	MostActiveDay  string         `json:"most_active_day,omitempty"`
	GitnappedCount int            `json:"gitnapped_count"`
}

// RepoStats holds the statistics of one analyzed repository.
type RepoStats struct {
	Repo RepositoryRef `json:"repo"`
	Stats
	GitnappedEvents []GitnappedEvent `json:"gitnapped_events"`
	SkippedCommits  int              `json:"skipped_commits"`
}

// AggregateStats holds statistics summed over a category, a project or all repositories.
type AggregateStats struct {
	Name        string `json:"name"`
	Repos       int    `json:"repos"`
	ActiveRepos int    `json:"active_repos"`
	Stats
	GitnappedEvents []GitnappedEvent `json:"gitnapped_events"`
}

// RepoFailure records a repository that could not be analyzed.
type RepoFailure struct {
	Repo  RepositoryRef `json:"repo"`
	Error string        `json:"error"`
}

// AnalysisResult is the complete outcome of one invocation.
type AnalysisResult struct {
	Window         AnalysisWindow   `json:"window"`
	Hours          WorkingHours     `json:"working_hours"`
	Author         string           `json:"author,omitempty"`
	PerRepo        []RepoStats      `json:"per_repo"`
	ByCategory     []AggregateStats `json:"by_category,omitempty"`
	ByProject      []AggregateStats `json:"by_project,omitempty"`
	Totals         *AggregateStats  `json:"totals,omitempty"`
	SortKey        SortKey          `json:"sort_key"`
	GroupingMode   GroupingMode     `json:"grouping_mode"`
	Failures       []RepoFailure    `json:"failures,omitempty"`
	SkippedCommits int              `json:"skipped_commits"`
}

// Category returns the aggregate for the named category.
func (r *AnalysisResult) Category(name string) (AggregateStats, bool) {
	return findAggregate(r.ByCategory, name)
}

// Project returns the aggregate for the named project.
func (r *AnalysisResult) Project(name string) (AggregateStats, bool) {
	return findAggregate(r.ByProject, name)
}

func findAggregate(groups []AggregateStats, name string) (AggregateStats, bool) {
	for _, g := range groups {
		if g.Name == name {
			return g, true
		}
	}
	return AggregateStats{}, false
}
