// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/gitnapped/internal/contract"
	"github.com/huangsam/gitnapped/internal/parquet"
	"github.com/huangsam/gitnapped/schema"
)

// rangeLayout renders window bounds in the header and footer.
const rangeLayout = "2006-01-02 15:04 MST"

// PrintResult outputs the analysis result, dispatching based on the output format configured.
func PrintResult(result *schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeResultCSV(w, result)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteResultParquet(result, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	default:
		// Default to human-readable tables
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeResultText(w, result, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// LogAnalysisHeader prints a concise, 2-line header before the analysis starts.
// It writes to stderr so structured output on stdout stays parseable.
func LogAnalysisHeader(cfg *contract.Config) {
	writeAnalysisHeader(os.Stderr, cfg)
}

func writeAnalysisHeader(w io.Writer, cfg *contract.Config) {
	if cfg.Silent {
		return
	}
	author := cfg.Author
	if cfg.AllAuthors || author == "" {
		author = "all authors"
	}
	_, _ = fmt.Fprintf(w, "🔎 Repos: %d (Author: %s, Working time: %s)\n", len(cfg.Repos), author, cfg.Hours)
	_, _ = fmt.Fprintf(w, "📅 Range: %s → %s\n",
		cfg.Window.Since.Format(rangeLayout), cfg.Window.Until.Format(rangeLayout))
}
