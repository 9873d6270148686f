package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilberkman/locscope/cmd/locscope/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start MCP server over stdio",
	Long: `Start an MCP (Model Context Protocol) server that lets an assistant query
the commit history: the view at a cutoff, commits, files and the story.

Configure in your MCP client, for example:
  {
    "mcpServers": {
      "locscope": {
        "command": "locscope",
        "args": ["serve-mcp"]
      }
    }
  }
`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	opts := mcp.Options{
		DBPath:    dbPath,
		CSVPath:   csvPath,
		DatasetID: datasetID,
		Config:    cfg,
		Log:       logger,
	}
	if err := mcp.StartServer(opts); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
