package outwriter

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/gitnapped/internal/contract"
	"github.com/huangsam/gitnapped/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// File type listings are capped per section.
const (
	topFileTypesTotal = 10
	topFileTypesGroup = 5
)

// shortHashLen is how much of a commit hash the event listing shows.
const shortHashLen = 8

// writeResultText renders the repository table, group tables, totals and footer.
func writeResultText(w io.Writer, result *schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	if len(result.PerRepo) == 0 {
		_, _ = fmt.Fprintln(w, "No repositories with activity in the analysis window.")
	} else if err := writeRepoTable(w, result, cfg); err != nil {
		return err
	}

	if cfg.RepoDetails {
		writeRepoDetails(w, result, cfg)
	}

	if result.GroupingMode.ByCategory() && len(result.ByCategory) > 0 {
		_, _ = fmt.Fprintf(w, "\n%s\n", contract.HeaderColor.Sprint("Category Statistics:"))
		if err := writeGroupTable(w, result.ByCategory, "Category", cfg); err != nil {
			return err
		}
	}
	if result.GroupingMode.ByProject() && len(result.ByProject) > 0 {
		_, _ = fmt.Fprintf(w, "\n%s\n", contract.HeaderColor.Sprint("Projects Statistics:"))
		if err := writeGroupTable(w, result.ByProject, "Project", cfg); err != nil {
			return err
		}
	}

	if result.Totals != nil {
		writeTotals(w, result.Totals, cfg)
	}

	if len(result.Failures) > 0 {
		_, _ = fmt.Fprintf(w, "\n%s\n", contract.HeaderColor.Sprint("Failed repositories:"))
		for _, f := range result.Failures {
			_, _ = fmt.Fprintf(w, "  %s: %s\n", f.Repo.Path, f.Error)
		}
	}

	if !cfg.Silent {
		writeFooter(w, result, cfg, duration)
	}
	return nil
}

// writeRepoTable generates and writes the per-repository table.
func writeRepoTable(w io.Writer, result *schema.AnalysisResult, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	maxNameWidth := getMaxTableNameWidth(cfg)

	headers := []string{"#", "Repository"}
	if result.GroupingMode.ByCategory() {
		headers = append(headers, "Category")
	}
	if result.GroupingMode.ByProject() {
		headers = append(headers, "Project")
	}
	headers = append(headers, "Commits", "Files", "+Lines", "-Lines", "Gitnapped")
	if cfg.MostActiveDay {
		headers = append(headers, "Most Active Day")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(result.PerRepo))
	for i, r := range result.PerRepo {
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(r.Repo.Label, maxNameWidth),
		}
		if result.GroupingMode.ByCategory() {
			row = append(row, r.Repo.Category)
		}
		if result.GroupingMode.ByProject() {
			row = append(row, r.Repo.Project)
		}
		row = append(row, statsCells(r.Stats)...)
		if cfg.MostActiveDay {
			row = append(row, mostActiveDayCell(r.Stats))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("failed to write table data: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

// writeGroupTable generates and writes a category or project rollup table.
func writeGroupTable(w io.Writer, groups []schema.AggregateStats, label string, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)

	headers := []string{label, "Repos", "Active", "Commits", "Files", "+Lines", "-Lines", "Gitnapped"}
	if cfg.MostActiveDay {
		headers = append(headers, "Most Active Day")
	}
	if cfg.FileTypes {
		headers = append(headers, "File Types")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(groups))
	for _, g := range groups {
		row := []string{g.Name, strconv.Itoa(g.Repos), strconv.Itoa(g.ActiveRepos)}
		row = append(row, statsCells(g.Stats)...)
		if cfg.MostActiveDay {
			row = append(row, mostActiveDayCell(g.Stats))
		}
		if cfg.FileTypes {
			row = append(row, formatFileTypes(g.FileTypes, topFileTypesGroup))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("failed to write table data: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

func statsCells(s schema.Stats) []string {
	percent := s.GitnappedPercent()
	return []string{
		strconv.Itoa(s.CommitCount),
		strconv.Itoa(s.FilesChanged),
		strconv.Itoa(s.Insertions),
		strconv.Itoa(s.Deletions),
		contract.GetColorLabel(percent, formatGitnapped(percent, s.GitnappedCount)),
	}
}

func mostActiveDayCell(s schema.Stats) string {
	if s.MostActiveDay == "" {
		return "-"
	}
	return fmt.Sprintf("%s (%d)", s.MostActiveDay, s.CommitsByDate[s.MostActiveDay])
}

// writeRepoDetails prints, for every listed repository, its commits per day
// (newest first), its gitnapped commits and optionally its file types.
func writeRepoDetails(w io.Writer, result *schema.AnalysisResult, cfg *contract.Config) {
	for _, r := range result.PerRepo {
		_, _ = fmt.Fprintf(w, "\n%s\n", contract.HeaderColor.Sprintf("Details for %s (%s):", r.Repo.Label, r.Repo.Path))
		if r.CommitCount == 0 {
			_, _ = fmt.Fprintln(w, "  No commits in the analysis window.")
			continue
		}

		_, _ = fmt.Fprintln(w, "  Commits by date:")
		days := make([]string, 0, len(r.CommitsByDate))
		for day := range r.CommitsByDate {
			days = append(days, day)
		}
		slices.Sort(days)
		slices.Reverse(days)
		for _, day := range days {
			_, _ = fmt.Fprintf(w, "    %s  %d\n", day, r.CommitsByDate[day])
		}

		if len(r.GitnappedEvents) > 0 {
			_, _ = fmt.Fprintln(w, "  Gitnapped commits:")
			for _, e := range r.GitnappedEvents {
				hash := e.Commit.Hash
				if len(hash) > shortHashLen {
					hash = hash[:shortHashLen]
				}
				_, _ = fmt.Fprintf(w, "    %s  %s  %s\n", hash, e.LocalTime.Format("2006-01-02 15:04 Mon"), e.Commit.AuthorName)
			}
		}

		if cfg.FileTypes && len(r.FileTypes) > 0 {
			_, _ = fmt.Fprintf(w, "  File types: %s\n", formatFileTypes(r.FileTypes, topFileTypesGroup))
		}
	}
}

// writeTotals prints the cross-repository summary block.
func writeTotals(w io.Writer, t *schema.AggregateStats, cfg *contract.Config) {
	percent := t.GitnappedPercent()
	_, _ = fmt.Fprintf(w, "\n%s\n", contract.HeaderColor.Sprint("Stats across analyzed repositories:"))
	_, _ = fmt.Fprintf(w, "  Active repositories: %d of %d\n", t.ActiveRepos, t.Repos)
	_, _ = fmt.Fprintf(w, "  Commits: %d\n", t.CommitCount)
	_, _ = fmt.Fprintf(w, "  Gitnapped for: %s\n",
		contract.GetColorLabel(percent, formatGitnapped(percent, t.GitnappedCount)))
	_, _ = fmt.Fprintf(w, "  Total files: %d\n", t.FilesChanged)
	_, _ = fmt.Fprintf(w, "  Total lines of code: +%d -%d\n", t.Insertions, t.Deletions)
	if cfg.MostActiveDay && t.MostActiveDay != "" {
		_, _ = fmt.Fprintf(w, "  Most active day: %s (%d commits)\n", t.MostActiveDay, t.CommitsByDate[t.MostActiveDay])
	}
	if cfg.FileTypes && len(t.FileTypes) > 0 {
		_, _ = fmt.Fprintf(w, "  File types: %s\n", formatFileTypes(t.FileTypes, topFileTypesTotal))
	}
}

// writeFooter prints run metadata below the tables.
func writeFooter(w io.Writer, result *schema.AnalysisResult, cfg *contract.Config, duration time.Duration) {
	_, _ = fmt.Fprintf(w, "\nRange: %s → %s, working time %s\n",
		result.Window.Since.Format(rangeLayout), result.Window.Until.Format(rangeLayout), result.Hours)
	_, _ = fmt.Fprintf(w, "Analysis completed in %v using %d workers. Cache backend: %s\n",
		duration.Round(time.Millisecond), cfg.Workers, cfg.CacheBackend)
	if result.SkippedCommits > 0 {
		_, _ = fmt.Fprintf(w, "Skipped %d unparseable commits.\n", result.SkippedCommits)
	}
	if len(result.Failures) > 0 {
		_, _ = fmt.Fprintf(w, "%d repositories could not be analyzed.\n", len(result.Failures))
	}
}

type extCount struct {
	ext   string
	count int
}

// topFileTypes returns up to limit extensions ordered by count, then name.
func topFileTypes(types map[string]int, limit int) []extCount {
	list := make([]extCount, 0, len(types))
	for ext, n := range types {
		list = append(list, extCount{ext, n})
	}
	slices.SortFunc(list, func(a, b extCount) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.ext, b.ext)
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list
}

func formatFileTypes(types map[string]int, limit int) string {
	var out string
	for i, e := range topFileTypes(types, limit) {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s (%d)", e.ext, e.count)
	}
	return out
}

// writeResultCSV writes one row per repository.
func writeResultCSV(w io.Writer, result *schema.AnalysisResult) error {
	header := []string{
		"rank", "repository", "path", "category", "project",
		"commits", "files", "insertions", "deletions",
		"gitnapped_count", "gitnapped_percent", "label", "most_active_day",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, r := range result.PerRepo {
			percent := r.GitnappedPercent()
			row := []string{
				strconv.Itoa(i + 1),
				r.Repo.Label,
				r.Repo.Path,
				r.Repo.Category,
				r.Repo.Project,
				strconv.Itoa(r.CommitCount),
				strconv.Itoa(r.FilesChanged),
				strconv.Itoa(r.Insertions),
				strconv.Itoa(r.Deletions),
				strconv.Itoa(r.GitnappedCount),
				strconv.FormatFloat(percent, 'f', 1, 64),
				contract.GetPlainLabel(percent),
				r.MostActiveDay,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
