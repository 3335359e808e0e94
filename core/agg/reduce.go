package agg

import (
	"sort"

	"github.com/huangsam/gitnapped/schema"
)

// TotalsName names the grand-total aggregate.
const TotalsName = "Total"

// ReduceOptions controls grouping, ordering and filtering of the reduced result.
type ReduceOptions struct {
	SortKey         schema.SortKey
	Grouping        schema.GroupingMode
	ActiveOnly      bool
	MostActiveRepos int // 0 = no cap
	ShowTotals      bool
}

// Reduce merges per-repository stats into category, project and total rollups,
// then sorts and filters the repository listing. Group sums are computed before
// any filtering, so they always cover every repository.
func Reduce(repos []schema.RepoStats, opts ReduceOptions) *schema.AnalysisResult {
	result := &schema.AnalysisResult{
		SortKey:      opts.SortKey,
		GroupingMode: opts.Grouping,
	}

	if opts.Grouping.ByCategory() {
		result.ByCategory = groupBy(repos, func(r schema.RepositoryRef) string { return r.Category })
		sortAggregates(result.ByCategory, opts.SortKey)
	}
	if opts.Grouping.ByProject() {
		result.ByProject = groupBy(repos, func(r schema.RepositoryRef) string { return r.Project })
		sortAggregates(result.ByProject, opts.SortKey)
	}
	if opts.ShowTotals {
		totals := newAggregate(TotalsName)
		for _, r := range repos {
			add(totals, r)
		}
		finish(totals)
		result.Totals = totals
	}

	listing := make([]schema.RepoStats, 0, len(repos))
	for _, r := range repos {
		result.SkippedCommits += r.SkippedCommits
		if opts.ActiveOnly && r.CommitCount == 0 {
			continue
		}
		listing = append(listing, r)
	}
	sort.SliceStable(listing, func(i, j int) bool {
		return listing[i].SortValue(opts.SortKey) > listing[j].SortValue(opts.SortKey)
	})
	if opts.MostActiveRepos > 0 && len(listing) > opts.MostActiveRepos {
		listing = listing[:opts.MostActiveRepos]
	}
	result.PerRepo = listing
	return result
}

// groupBy partitions repositories by key, keeping groups in first-seen order.
func groupBy(repos []schema.RepoStats, key func(schema.RepositoryRef) string) []schema.AggregateStats {
	index := make(map[string]int)
	var groups []*schema.AggregateStats
	for _, r := range repos {
		name := key(r.Repo)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, newAggregate(name))
		}
		add(groups[i], r)
	}

	out := make([]schema.AggregateStats, 0, len(groups))
	for _, g := range groups {
		finish(g)
		out = append(out, *g)
	}
	return out
}

func sortAggregates(groups []schema.AggregateStats, key schema.SortKey) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].SortValue(key) > groups[j].SortValue(key)
	})
}

func newAggregate(name string) *schema.AggregateStats {
	return &schema.AggregateStats{Name: name, Stats: schema.NewStats(), GitnappedEvents: []schema.GitnappedEvent{}}
}

// add folds one repository into the aggregate. Histograms are merged count by count.
func add(a *schema.AggregateStats, r schema.RepoStats) {
	a.Repos++
	if r.CommitCount > 0 {
		a.ActiveRepos++
	}
	a.CommitCount += r.CommitCount
	a.FilesChanged += r.FilesChanged
	a.Insertions += r.Insertions
	a.Deletions += r.Deletions
	a.GitnappedCount += r.GitnappedCount
	for ext, n := range r.FileTypes {
		a.FileTypes[ext] += n
	}
	for day, n := range r.CommitsByDate {
		a.CommitsByDate[day] += n
	}
	a.GitnappedEvents = append(a.GitnappedEvents, r.GitnappedEvents...)
}

// finish derives the fields that cannot be summed.
func finish(a *schema.AggregateStats) {
	a.MostActiveDay = MostActiveDay(a.CommitsByDate)
	sort.SliceStable(a.GitnappedEvents, func(i, j int) bool {
		return a.GitnappedEvents[i].Commit.Timestamp.Before(a.GitnappedEvents[j].Commit.Timestamp)
	})
}
