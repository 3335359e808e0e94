package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/gitnapped/core"
	"github.com/huangsam/gitnapped/internal/contract"
	"github.com/huangsam/gitnapped/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

func (h *toolHandler) handleGetGitnappedStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyStatsArgs(cfg, request, time.Now()); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	result, err := core.GetGitnappedResult(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// applyStatsArgs overlays the tool arguments on a copy of the base config.
func applyStatsArgs(cfg *contract.Config, request mcp.CallToolRequest, now time.Time) error {
	author := strings.TrimSpace(request.GetString("author", ""))

	if dir := strings.TrimSpace(request.GetString("dir", "")); dir != "" {
		abs, err := filepath.Abs(contract.ExpandHome(dir))
		if err != nil {
			return fmt.Errorf("invalid dir %q: %w", dir, err)
		}
		cfg.Repos = []schema.RepositoryRef{contract.NewRepositoryRef(contract.RepoEntry{Path: abs})}
		// A single directory counts every author unless one is named.
		cfg.AllAuthors, cfg.Author = true, ""
	}
	if author != "" {
		cfg.AllAuthors, cfg.Author = false, author
	}
	if len(cfg.Repos) == 0 {
		return fmt.Errorf("no repositories configured; pass dir")
	}

	since := request.GetString("since", "")
	until := request.GetString("until", "")
	period := request.GetString("period", "")
	if since != "" || until != "" || period != "" {
		w, err := contract.ResolveWindow(now, since, until, period)
		if err != nil {
			return err
		}
		cfg.Window = w
	}

	if wt := request.GetString("working_time", ""); wt != "" {
		hours, err := contract.ParseWorkingHours(wt)
		if err != nil {
			return err
		}
		cfg.Hours = hours
	}

	if sortBy := strings.ToLower(strings.TrimSpace(request.GetString("sort_by", ""))); sortBy != "" {
		key := schema.SortKey(sortBy)
		if _, ok := schema.ValidSortKeys[key]; !ok {
			return fmt.Errorf("invalid sort_by %q. must be commits, files, lines", sortBy)
		}
		cfg.SortKey = key
	}
	return nil
}
