package agg

import (
	"sort"
	"time"

	"github.com/huangsam/gitnapped/schema"
)

// Params is the per-run state every repository is aggregated with.
type Params struct {
	Window   schema.AnalysisWindow
	Author   AuthorFilter
	Hours    schema.WorkingHours
	Location *time.Location // nil keeps each commit's offset
}

// AggregateRepo computes the statistics of one repository from its commit records.
// Records outside the window or by other authors are ignored. A repository with
// no matching commits still yields zeroed stats.
func AggregateRepo(repo schema.RepositoryRef, commits []schema.CommitRecord, p Params) schema.RepoStats {
	matching := make([]schema.CommitRecord, 0, len(commits))
	for _, c := range commits {
		if Matches(c, p.Window, p.Author) {
			matching = append(matching, c)
		}
	}
	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].Timestamp.Before(matching[j].Timestamp)
	})

	rs := schema.RepoStats{Repo: repo, Stats: schema.NewStats(), GitnappedEvents: []schema.GitnappedEvent{}}
	for _, c := range matching {
		local := LocalClock(c.Timestamp, p.Location)

		rs.CommitCount++
		rs.Insertions += c.Insertions
		rs.Deletions += c.Deletions
		rs.FilesChanged += len(c.Files)
		for _, f := range c.Files {
			ext := f.Extension
			if ext == "" {
				ext = FileExtension(f.Path)
			}
			rs.FileTypes[ext]++
		}
		rs.CommitsByDate[local.Format(schema.DayLayout)]++

		if IsGitnapped(MinuteOfDay(local), p.Hours) {
			rs.GitnappedEvents = append(rs.GitnappedEvents, schema.GitnappedEvent{
				Commit:     c,
				Repository: repo,
				LocalTime:  local,
			})
		}
	}
	rs.GitnappedCount = len(rs.GitnappedEvents)
	rs.MostActiveDay = MostActiveDay(rs.CommitsByDate)
	return rs
}

// MostActiveDay returns the day with the most commits, preferring the earliest
// day on a tie. It returns "" for an empty histogram.
func MostActiveDay(hist map[string]int) string {
	best, bestCount := "", 0
	for day, count := range hist {
		if count > bestCount || (count == bestCount && count > 0 && day < best) {
			best, bestCount = day, count
		}
	}
	return best
}
