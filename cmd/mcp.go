package cmd

import (
	"github.com/huangsam/commitpulse/internal/iocache"
	"github.com/huangsam/commitpulse/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Commit Pulse MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents query product summaries,
contributors, velocity and dashboards through standard tools.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, iocache.Manager)
	},
}
