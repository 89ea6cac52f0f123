package cmd

import (
	"github.com/huangsam/burstline/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the burstline MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents reduce burst documents.

Tools:
  reduce_timeline - per-day timeline of the highest active burst level
  burst_range     - display window spanned by bursts at or above a level

Flags such as --unit, --timezone and the cache settings become the defaults
that tool arguments override.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
