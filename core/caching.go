package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/gitnapped/core/agg"
	"github.com/huangsam/gitnapped/internal/contract"
	"github.com/huangsam/gitnapped/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheMaxAge is how long a cached commit log stays usable.
const cacheMaxAge = 7 * 24 * time.Hour

// cachedLog is the cached form of one parsed activity log.
type cachedLog struct {
	Commits []schema.CommitRecord `json:"commits"`
	Skipped int                   `json:"skipped"`
}

// cachedCommitRecords returns the parsed commit records of a repository, using
// the activity store when one is configured.
func cachedCommitRecords(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, repoPath string) ([]schema.CommitRecord, int, error) {
	var activity contract.CacheStore
	if mgr != nil {
		activity = mgr.GetActivityStore()
	}
	if activity == nil {
		// Fallback to direct computation
		return fetchCommitRecords(ctx, cfg, client, repoPath)
	}

	key := generateCacheKey(ctx, cfg, client, repoPath)
	if key == "" {
		return fetchCommitRecords(ctx, cfg, client, repoPath)
	}

	// Check for cache hit
	if result := checkCacheHit(activity, key); result != nil {
		contract.Logger().Debugf("Cache hit for %s", repoPath)
		return result.Commits, result.Skipped, nil
	}

	// Cache miss: compute and store
	return computeAndStore(ctx, cfg, client, activity, key, repoPath)
}

// fetchCommitRecords reads the activity log over the hour-aligned fetch window and parses it.
func fetchCommitRecords(ctx context.Context, cfg *contract.Config, client contract.GitClient, repoPath string) ([]schema.CommitRecord, int, error) {
	out, err := client.GetActivityLog(ctx, repoPath, cfg.GetFetchSince(), cfg.GetFetchUntil())
	if err != nil {
		return nil, 0, err
	}
	commits, skipped := agg.ParseActivityLog(out)
	return commits, skipped, nil
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(activity contract.CacheStore, key string) *cachedLog {
	data, version, ts, err := activity.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheMaxAge {
		return nil
	}
	var result cachedLog
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

// computeAndStore computes the result and stores it in cache
func computeAndStore(ctx context.Context, cfg *contract.Config, client contract.GitClient, activity contract.CacheStore, key, repoPath string) ([]schema.CommitRecord, int, error) {
	commits, skipped, err := fetchCommitRecords(ctx, cfg, client, repoPath)
	if err != nil {
		return nil, 0, err
	}

	if data, err := json.Marshal(cachedLog{Commits: commits, Skipped: skipped}); err == nil {
		if err := activity.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to write commit cache", err)
		}
	}
	return commits, skipped, nil
}

// generateCacheKey creates a unique key for a repository's log over the fetch window.
// It returns "" when HEAD cannot be resolved, which disables caching for that repository.
func generateCacheKey(ctx context.Context, cfg *contract.Config, client contract.GitClient, repoPath string) string {
	repoHash, err := client.GetRepoHash(ctx, repoPath)
	if err != nil || repoHash == "" {
		return ""
	}

	key := fmt.Sprintf("%s:%s:%d:%d:%s",
		repoPath,
		repoHash,
		cfg.GetFetchSince().Unix(),
		cfg.GetFetchUntil().Unix(),
		cfg.GitBackend,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
