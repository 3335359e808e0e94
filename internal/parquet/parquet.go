// Package parquet provides data structures and functions for exporting gitnapped
// results and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/gitnapped/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single analysis run with metadata.
// This struct maps to the gitnapped_runs database table.
type Run struct {
	RunID int64 `parquet:"run_id,snappy"`

	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is nil for runs that never finished
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	DurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	WindowSince time.Time `parquet:"window_since,snappy"`
	WindowUntil time.Time `parquet:"window_until,snappy"`

	// Author is empty when all authors were counted
	Author string `parquet:"author,snappy"`

	TotalRepos int32 `parquet:"total_repos,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RepoStats represents the counters of one repository in a run.
// This struct maps to the gitnapped_repo_stats database table.
type RepoStats struct {
	RunID          int64   `parquet:"run_id,snappy"`
	RepoPath       string  `parquet:"repo_path,snappy"`
	Label          string  `parquet:"label,snappy"`
	Category       string  `parquet:"category,snappy"`
	Project        string  `parquet:"project,snappy"`
	CommitCount    int32   `parquet:"commit_count,snappy"`
	FilesChanged   int32   `parquet:"files_changed,snappy"`
	Insertions     int32   `parquet:"insertions,snappy"`
	Deletions      int32   `parquet:"deletions,snappy"`
	GitnappedCount int32   `parquet:"gitnapped_count,snappy"`
	MostActiveDay  *string `parquet:"most_active_day,optional,snappy"`
}

// ResultRow is one row of an analysis result: a repository, a group or the totals.
type ResultRow struct {
	// Scope is one of repo, category, project or total
	Scope            string  `parquet:"scope,snappy"`
	Name             string  `parquet:"name,snappy"`
	Path             string  `parquet:"path,optional,snappy"`
	Category         string  `parquet:"category,optional,snappy"`
	Project          string  `parquet:"project,optional,snappy"`
	Repos            int32   `parquet:"repos,snappy"`
	CommitCount      int32   `parquet:"commit_count,snappy"`
	FilesChanged     int32   `parquet:"files_changed,snappy"`
	Insertions       int32   `parquet:"insertions,snappy"`
	Deletions        int32   `parquet:"deletions,snappy"`
	GitnappedCount   int32   `parquet:"gitnapped_count,snappy"`
	GitnappedPercent float64 `parquet:"gitnapped_percent,snappy"`
	MostActiveDay    string  `parquet:"most_active_day,optional,snappy"`
}

// Result row scopes.
const (
	ScopeRepo     = "repo"
	ScopeCategory = "category"
	ScopeProject  = "project"
	ScopeTotal    = "total"
)

// writeParquet writes rows to a new Parquet file, inferring the schema from T's struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRepoStatsParquet writes a slice of RepoStats structs to a Parquet file.
func WriteRepoStatsParquet(data []RepoStats, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteResultParquet writes an analysis result to a Parquet file, one row per
// listed repository followed by the category, project and total rows.
func WriteResultParquet(result *schema.AnalysisResult, outputPath string) error {
	return writeParquet(ConvertResult(result), outputPath)
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:        record.RunID,
			StartTime:    record.StartTime,
			EndTime:      record.EndTime,
			DurationMs:   record.DurationMs,
			WindowSince:  record.WindowSince,
			WindowUntil:  record.WindowUntil,
			Author:       record.Author,
			TotalRepos:   record.TotalRepos,
			ConfigParams: record.ConfigParams,
		}
	}
	return result
}

// ConvertRepoStatsRecords converts schema.RepoStatsRecord to RepoStats for Parquet export.
func ConvertRepoStatsRecords(records []schema.RepoStatsRecord) []RepoStats {
	result := make([]RepoStats, len(records))
	for i, record := range records {
		result[i] = RepoStats{
			RunID:          record.RunID,
			RepoPath:       record.RepoPath,
			Label:          record.Label,
			Category:       record.Category,
			Project:        record.Project,
			CommitCount:    record.CommitCount,
			FilesChanged:   record.FilesChanged,
			Insertions:     record.Insertions,
			Deletions:      record.Deletions,
			GitnappedCount: record.GitnappedCount,
			MostActiveDay:  record.MostActiveDay,
		}
	}
	return result
}

// ConvertResult flattens an analysis result into rows.
func ConvertResult(result *schema.AnalysisResult) []ResultRow {
	rows := make([]ResultRow, 0, len(result.PerRepo)+len(result.ByCategory)+len(result.ByProject)+1)
	for _, rs := range result.PerRepo {
		row := statsRow(ScopeRepo, rs.Repo.Label, rs.Stats)
		row.Path = rs.Repo.Path
		row.Category = rs.Repo.Category
		row.Project = rs.Repo.Project
		row.Repos = 1
		rows = append(rows, row)
	}
	for _, group := range []struct {
		scope string
		aggs  []schema.AggregateStats
	}{
		{ScopeCategory, result.ByCategory},
		{ScopeProject, result.ByProject},
	} {
		for _, a := range group.aggs {
			rows = append(rows, aggregateRow(group.scope, a))
		}
	}
	if result.Totals != nil {
		rows = append(rows, aggregateRow(ScopeTotal, *result.Totals))
	}
	return rows
}

func aggregateRow(scope string, a schema.AggregateStats) ResultRow {
	row := statsRow(scope, a.Name, a.Stats)
	row.Repos = int32(a.Repos)
	return row
}

func statsRow(scope, name string, s schema.Stats) ResultRow {
	return ResultRow{
		Scope:            scope,
		Name:             name,
		CommitCount:      int32(s.CommitCount),
		FilesChanged:     int32(s.FilesChanged),
		Insertions:       int32(s.Insertions),
		Deletions:        int32(s.Deletions),
		GitnappedCount:   int32(s.GitnappedCount),
		GitnappedPercent: s.GitnappedPercent(),
		MostActiveDay:    s.MostActiveDay,
	}
}
