package cmd

import (
	"runtime"

	"github.com/huangsam/burstline/internal/mcp"
	"github.com/spf13/cobra"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of burstline.",
	Long: `Display version information including build details.

Shows the release version, commit, build time, the MCP server version and
the Go runtime. Include this when reporting bugs.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("burstline CLI\n")
		cmd.Printf("  Version: %s\n", version)
		cmd.Printf("  Commit:  %s\n", commit)
		cmd.Printf("  Built:   %s\n", date)
		cmd.Printf("  MCP:     %s\n", mcp.Version)
		cmd.Printf("  Runtime: %s (%s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}
