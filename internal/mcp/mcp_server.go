// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/gitnapped/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolGetGitnappedStats is the name of the analysis tool.
const ToolGetGitnappedStats = "get_gitnapped_stats"

// NewMCPServer initializes and configures the gitnapped MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Gitnapped Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	s.AddTool(mcp.NewTool(ToolGetGitnappedStats,
		mcp.WithDescription("Summarize commit activity across repositories and report how many commits were made outside working hours."),
		mcp.WithString("dir", mcp.Description("Analyze a single repository at this path instead of the configured list.")),
		mcp.WithString("period", mcp.Description("Relative period such as 6M, 2Y, 3W, 5D or 12H.")),
		mcp.WithString("since", mcp.Description("Absolute start date (YYYY-MM-DD). Overrides period.")),
		mcp.WithString("until", mcp.Description("Absolute end date (YYYY-MM-DD), exclusive. Overrides period.")),
		mcp.WithString("author", mcp.Description("Only count commits by this exact author name.")),
		mcp.WithString("working_time", mcp.Description("Working hours such as 09:00-17:00 or 9AM-5PM.")),
		mcp.WithString("sort_by", mcp.Description("Sort repositories by this metric."), mcp.Enum("commits", "files", "lines")),
	), h.handleGetGitnappedStats)

	return s
}

// StartMCPServer starts the gitnapped MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
