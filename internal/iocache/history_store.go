package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/gitnapped/internal/contract"
	"github.com/huangsam/gitnapped/schema"
)

// Table names for run history.
const (
	runsTable      = "gitnapped_runs"
	repoStatsTable = "gitnapped_repo_stats"
)

// historyTables lists the history tables in creation order.
var historyTables = []string{runsTable, repoStatsTable}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables creates the history tables from the embedded migrations.
// The statements are idempotent so an already migrated database is left as is.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	stmts, err := upMigrations(backend)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// BeginRun creates a new run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, window schema.AnalysisWindow, author string, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)
	args := []any{
		formatTime(startTime, hs.backend),
		formatTime(window.Since, hs.backend),
		formatTime(window.Until, hs.backend),
		author,
		string(configJSON),
	}

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, window_since, window_until, author, config_params)
			VALUES ($1, $2, $3, $4, $5) RETURNING run_id`, quotedTableName)
		err = hs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, window_since, window_until, author, config_params)
			VALUES (?, ?, ?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = hs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return runID, nil
}

// EndRun updates the run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalRepos int) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholder(hs.backend, 1))

	start := timeScanner{backend: hs.backend}
	if err := hs.db.QueryRow(query, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	if startTime == nil {
		return fmt.Errorf("run %d has no start_time", runID)
	}

	durationMs := endTime.Sub(*startTime).Milliseconds()

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_repos = %s WHERE run_id = %s`,
		quotedTableName,
		placeholder(hs.backend, 1), placeholder(hs.backend, 2), placeholder(hs.backend, 3), placeholder(hs.backend, 4))
	if _, err := hs.db.Exec(updateQuery, formatTime(endTime, hs.backend), durationMs, totalRepos, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return nil
}

// RecordRepoStats stores the counters of one repository in a run.
func (hs *HistoryStoreImpl) RecordRepoStats(runID int64, stats schema.RepoStats) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	cols := []string{
		"run_id", "repo_path", "label", "category", "project",
		"commit_count", "files_changed", "insertions", "deletions", "gitnapped_count", "most_active_day",
	}
	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = placeholder(hs.backend, i+1)
	}

	var mostActive *string
	if stats.MostActiveDay != "" {
		mostActive = &stats.MostActiveDay
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteTableName(repoStatsTable, hs.backend), strings.Join(cols, ", "), strings.Join(marks, ", "))
	_, err := hs.db.Exec(query,
		runID, stats.Repo.Path, stats.Repo.Label, stats.Repo.Category, stats.Repo.Project,
		stats.CommitCount, stats.FilesChanged, stats.Insertions, stats.Deletions, stats.GitnappedCount, mostActive,
	)
	if err != nil {
		return fmt.Errorf("failed to insert repo stats for %s: %w", stats.Repo.Path, err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := timeScanner{backend: hs.backend}
		lastQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns)
		if err := hs.db.QueryRow(lastQuery).Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		if t, err := last.value(); err != nil {
			return status, err
		} else if t != nil {
			status.LastRunTime = *t
		}

		oldest := timeScanner{backend: hs.backend}
		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns)
		if err := hs.db.QueryRow(oldestQuery).Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		if t, err := oldest.value(); err != nil {
			return status, err
		} else if t != nil {
			status.OldestRunTime = *t
		}

		commitsQuery := fmt.Sprintf("SELECT COALESCE(SUM(commit_count), 0) FROM %s", quoteTableName(repoStatsTable, hs.backend))
		if err := hs.db.QueryRow(commitsQuery).Scan(&status.TotalCommits); err != nil {
			return status, fmt.Errorf("failed to get total commits: %w", err)
		}
	}

	for _, table := range historyTables {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, window_since, window_until,
		author, total_repos, config_params FROM %s ORDER BY run_id`, quoteTableName(runsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var (
			record     schema.RunRecord
			totalRepos sql.NullInt32
			start      = timeScanner{backend: hs.backend}
			end        = timeScanner{backend: hs.backend}
			since      = timeScanner{backend: hs.backend}
			until      = timeScanner{backend: hs.backend}
		)
		if err := rows.Scan(&record.RunID, start.dest(), end.dest(), &record.DurationMs, since.dest(), until.dest(),
			&record.Author, &totalRepos, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		record.TotalRepos = totalRepos.Int32

		for _, field := range []struct {
			scanner *timeScanner
			assign  func(*time.Time)
		}{
			{&start, func(t *time.Time) { record.StartTime = *t }},
			{&end, func(t *time.Time) { record.EndTime = t }},
			{&since, func(t *time.Time) { record.WindowSince = *t }},
			{&until, func(t *time.Time) { record.WindowUntil = *t }},
		} {
			t, err := field.scanner.value()
			if err != nil {
				return nil, err
			}
			if t != nil {
				field.assign(t)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return results, nil
}

// GetAllRepoStats retrieves every per-repository row from the store.
func (hs *HistoryStoreImpl) GetAllRepoStats() ([]schema.RepoStatsRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, repo_path, label, category, project, commit_count, files_changed,
		insertions, deletions, gitnapped_count, most_active_day
		FROM %s ORDER BY run_id, repo_path`, quoteTableName(repoStatsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query repo stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RepoStatsRecord
	for rows.Next() {
		var record schema.RepoStatsRecord
		if err := rows.Scan(&record.RunID, &record.RepoPath, &record.Label, &record.Category, &record.Project,
			&record.CommitCount, &record.FilesChanged, &record.Insertions, &record.Deletions,
			&record.GitnappedCount, &record.MostActiveDay); err != nil {
			return nil, fmt.Errorf("failed to scan repo stats: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating repo stats: %w", err)
	}

	return results, nil
}
