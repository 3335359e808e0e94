package cmd

import (
	"github.com/huangsam/gitnapped/internal/iocache"
	"github.com/huangsam/gitnapped/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the gitnapped MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents run the analysis through the
get_gitnapped_stats tool.

The flags and settings file supply the defaults for every tool call. Without a
repository config file the server analyzes the current directory.`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		// Stdout carries the protocol, so the analysis header is never printed in MCP mode.
		return sharedSetup(true)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(cmd.Context(), cfg, iocache.Manager)
	},
}
