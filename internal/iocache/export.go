package iocache

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/gitnapped/internal/contract"
	"github.com/huangsam/gitnapped/internal/parquet"
)

// ExportHistory writes the recorded runs and per-repository rows of store to
// two Parquet files next to outputFile, reporting progress to w.
func ExportHistory(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history tracking is disabled; set --history-backend to export runs")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total repository records: %d\n", status.TableSizes[repoStatsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	repoStats, err := store.GetAllRepoStats()
	if err != nil {
		return fmt.Errorf("failed to retrieve repo stats: %w", err)
	}

	// gitnapped.parquet becomes gitnapped.runs.parquet and gitnapped.repo_stats.parquet
	base := strings.TrimSuffix(outputFile, ".parquet")
	runsFile := base + ".runs.parquet"
	parquetRuns := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	statsFile := base + ".repo_stats.parquet"
	parquetStats := parquet.ConvertRepoStatsRecords(repoStats)
	if err := parquet.WriteRepoStatsParquet(parquetStats, statsFile); err != nil {
		return fmt.Errorf("failed to write repo stats: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d repository records to: %s\n", len(parquetStats), statsFile)

	return nil
}
