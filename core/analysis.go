package core

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/huangsam/gitnapped/core/agg"
	"github.com/huangsam/gitnapped/internal/contract"
	"github.com/huangsam/gitnapped/internal/outwriter"
	"github.com/huangsam/gitnapped/schema"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// repoOutcome is the slot a worker fills for one repository.
type repoOutcome struct {
	stats schema.RepoStats
	err   error
}

// AnalyzeRepositories analyzes every configured repository on a bounded worker pool,
// then reduces the results. A repository that fails or times out is recorded in
// the result's failures and left out of every sum. When ctx is canceled the partial
// work is discarded and the context error is returned.
func AnalyzeRepositories(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) (*schema.AnalysisResult, error) {
	if !shouldSuppressHeader(ctx) {
		outwriter.LogAnalysisHeader(cfg)
	}

	// --- 0. Begin Run Tracking (if configured) ---
	runID := beginRun(cfg, mgr)

	// --- 1. Per-repository phase ---
	params := agg.Params{
		Window:   cfg.Window,
		Author:   agg.NewAuthorFilter(cfg.Author, cfg.AllAuthors),
		Hours:    cfg.Hours,
		Location: cfg.Location,
	}
	slots := make([]repoOutcome, len(cfg.Repos))
	workers, timeout := cfg.Workers, cfg.RepoTimeout
	if workers <= 0 {
		workers = contract.DefaultWorkers
	}
	if timeout <= 0 {
		timeout = contract.DefaultRepoTimeout
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, repo := range cfg.Repos {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			repoCtx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()
			stats, err := analyzeRepo(repoCtx, cfg, client, mgr, repo, params)
			slots[i] = repoOutcome{stats: stats, err: err}
			return nil // failures stay in their slot
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis canceled: %w", err)
	}

	// --- 2. Reduce phase ---
	succeeded := make([]schema.RepoStats, 0, len(slots))
	var failures []schema.RepoFailure
	for i, slot := range slots {
		if slot.err != nil {
			contract.LogWarn(fmt.Sprintf("Skipping repository %s", cfg.Repos[i].Path), slot.err)
			failures = append(failures, schema.RepoFailure{Repo: cfg.Repos[i], Error: slot.err.Error()})
			continue
		}
		succeeded = append(succeeded, slot.stats)
	}

	result := agg.Reduce(succeeded, agg.ReduceOptions{
		SortKey:         cfg.SortKey,
		Grouping:        cfg.Grouping,
		ActiveOnly:      cfg.ActiveOnly,
		MostActiveRepos: cfg.MostActiveRepos,
		ShowTotals:      cfg.ShowTotals,
	})
	result.Window = cfg.Window
	result.Hours = cfg.Hours
	result.Author = cfg.Author
	result.Failures = failures

	// --- 3. End Run Tracking ---
	endRun(mgr, runID, succeeded)

	return result, nil
}

// analyzeRepo reads, parses and aggregates the commits of one repository,
// including its submodules when requested.
func analyzeRepo(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, repo schema.RepositoryRef, params agg.Params) (schema.RepoStats, error) {
	start := time.Now()

	root, err := client.GetRepoRoot(ctx, repo.Path)
	if err != nil {
		return schema.RepoStats{}, fmt.Errorf("%w: %s: %w", schema.ErrRepositoryUnavailable, repo.Path, err)
	}

	commits, skipped, err := cachedCommitRecords(ctx, cfg, client, mgr, root)
	if err != nil {
		return schema.RepoStats{}, fmt.Errorf("%w: %s: %w", schema.ErrRepositoryUnavailable, repo.Path, err)
	}

	if cfg.Submodules {
		subs, err := client.ListSubmodules(ctx, root)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Could not list submodules of %s", repo.Path), err)
		}
		for _, sub := range subs {
			subCommits, subSkipped, err := cachedCommitRecords(ctx, cfg, client, mgr, filepath.Join(root, sub))
			if err != nil {
				contract.LogWarn(fmt.Sprintf("Skipping submodule %s of %s", sub, repo.Path), err)
				continue
			}
			commits = append(commits, subCommits...)
			skipped += subSkipped
		}
	}

	stats := agg.AggregateRepo(repo, commits, params)
	stats.SkippedCommits = skipped

	contract.Logger().WithFields(logrus.Fields{
		"repo":      repo.Label,
		"records":   len(commits),
		"commits":   stats.CommitCount,
		"gitnapped": stats.GitnappedCount,
		"skipped":   skipped,
		"elapsed":   time.Since(start).Round(time.Millisecond),
	}).Debug("Analyzed repository")

	return stats, nil
}

// beginRun records the start of a run in the history store. It returns 0 when
// history is disabled or unavailable.
func beginRun(cfg *contract.Config, mgr contract.CacheManager) int64 {
	if mgr == nil {
		return 0
	}
	history := mgr.GetHistoryStore()
	if history == nil {
		return 0
	}
	configParams := map[string]any{
		"working_time":      cfg.Hours.String(),
		"sort_by":           string(cfg.SortKey),
		"grouping":          string(cfg.Grouping),
		"active_only":       cfg.ActiveOnly,
		"most_active_repos": cfg.MostActiveRepos,
		"submodules":        cfg.Submodules,
		"workers":           cfg.Workers,
		"git_backend":       string(cfg.GitBackend),
	}
	runID, err := history.BeginRun(time.Now(), cfg.Window, cfg.Author, configParams)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return 0
	}
	return runID
}

// endRun stores the per-repo counters and closes the run.
func endRun(mgr contract.CacheManager, runID int64, stats []schema.RepoStats) {
	if runID <= 0 {
		return
	}
	history := mgr.GetHistoryStore()
	for _, rs := range stats {
		if err := history.RecordRepoStats(runID, rs); err != nil {
			contract.LogWarn(fmt.Sprintf("Failed to record stats for %s", rs.Repo.Path), err)
		}
	}
	if err := history.EndRun(runID, time.Now(), len(stats)); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}
