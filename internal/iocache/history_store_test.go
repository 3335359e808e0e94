package iocache

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/gitnapped/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWindow = schema.AnalysisWindow{
	Since: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	Until: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
}

func newSQLiteHistory(t *testing.T) *HistoryStoreImpl {
	t.Helper()
	store, err := NewHistoryStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*HistoryStoreImpl)
}

func sampleRepoStats(path string, commits, gitnapped int, day string) schema.RepoStats {
	stats := schema.NewStats()
	stats.CommitCount = commits
	stats.FilesChanged = commits * 2
	stats.Insertions = commits * 10
	stats.Deletions = commits
	stats.GitnappedCount = gitnapped
	stats.MostActiveDay = day
	return schema.RepoStats{
		Repo:  schema.RepositoryRef{Path: path, Label: filepath.Base(path), Category: "Backend", Project: schema.UnnamedProject},
		Stats: stats,
	}
}

func TestHistoryStore_NoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(time.Now(), testWindow, "", map[string]any{"sort_by": "commits"})
	assert.NoError(t, err)
	assert.Zero(t, runID)
	assert.NoError(t, store.EndRun(1, time.Now(), 3))
	assert.NoError(t, store.RecordRepoStats(1, schema.RepoStats{}))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, store.Close())
}

func TestHistoryStore_SQLiteRoundTrip(t *testing.T) {
	store := newSQLiteHistory(t)

	start := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	runID, err := store.BeginRun(start, testWindow, "Jane Doe", map[string]any{"sort_by": "lines", "workers": 4})
	require.NoError(t, err)
	assert.Positive(t, runID)

	require.NoError(t, store.RecordRepoStats(runID, sampleRepoStats("/src/api", 4, 1, "2024-01-02")))
	require.NoError(t, store.RecordRepoStats(runID, sampleRepoStats("/src/idle", 0, 0, "")))
	require.NoError(t, store.EndRun(runID, start.Add(2500*time.Millisecond), 2))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.True(t, start.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.DurationMs)
	assert.Equal(t, int64(2500), *run.DurationMs)
	assert.True(t, testWindow.Since.Equal(run.WindowSince))
	assert.True(t, testWindow.Until.Equal(run.WindowUntil))
	assert.Equal(t, "Jane Doe", run.Author)
	assert.Equal(t, int32(2), run.TotalRepos)
	require.NotNil(t, run.ConfigParams)
	var params map[string]any
	require.NoError(t, json.Unmarshal([]byte(*run.ConfigParams), &params))
	assert.Equal(t, "lines", params["sort_by"])

	rows, err := store.GetAllRepoStats()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "/src/api", rows[0].RepoPath)
	assert.Equal(t, int32(4), rows[0].CommitCount)
	assert.Equal(t, int32(40), rows[0].Insertions)
	assert.Equal(t, int32(1), rows[0].GitnappedCount)
	require.NotNil(t, rows[0].MostActiveDay)
	assert.Equal(t, "2024-01-02", *rows[0].MostActiveDay)
	assert.Nil(t, rows[1].MostActiveDay, "an idle repository has no most active day")
}

func TestHistoryStore_UnfinishedRun(t *testing.T) {
	store := newSQLiteHistory(t)

	_, err := store.BeginRun(time.Now(), testWindow, "", nil)
	require.NoError(t, err)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].DurationMs)
	assert.Zero(t, runs[0].TotalRepos)
}

func TestHistoryStore_EndUnknownRun(t *testing.T) {
	store := newSQLiteHistory(t)
	assert.Error(t, store.EndRun(42, time.Now(), 1))
}

func TestHistoryStore_DuplicateRepoInRun(t *testing.T) {
	store := newSQLiteHistory(t)
	runID, err := store.BeginRun(time.Now(), testWindow, "", nil)
	require.NoError(t, err)

	require.NoError(t, store.RecordRepoStats(runID, sampleRepoStats("/src/api", 1, 0, "2024-01-02")))
	assert.Error(t, store.RecordRepoStats(runID, sampleRepoStats("/src/api", 1, 0, "2024-01-02")))
}

func TestHistoryStore_GetStatus(t *testing.T) {
	store := newSQLiteHistory(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalRuns)
	assert.Equal(t, int64(0), status.TableSizes[runsTable])

	first := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	for i := range 2 {
		runID, err := store.BeginRun(first.Add(time.Duration(i)*time.Hour), testWindow, "", nil)
		require.NoError(t, err)
		require.NoError(t, store.RecordRepoStats(runID, sampleRepoStats("/src/api", 3, 1, "2024-01-02")))
		require.NoError(t, store.EndRun(runID, first.Add(time.Duration(i)*time.Hour+time.Second), 1))
	}

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, int64(2), status.LastRunID)
	assert.True(t, first.Add(time.Hour).Equal(status.LastRunTime))
	assert.True(t, first.Equal(status.OldestRunTime))
	assert.Equal(t, int64(6), status.TotalCommits)
	assert.Equal(t, int64(2), status.TableSizes[repoStatsTable])
}
