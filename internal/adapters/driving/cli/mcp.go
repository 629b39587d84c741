package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tabula/internal/adapters/driving/mcp"
	"github.com/custodia-labs/tabula/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so assistants can run
Salesforce queries and reports, list SharePoint folders and look up
Genesys Cloud conversations.

By default the server speaks JSON-RPC over stdio. Use --port to serve
HTTP instead, for example for MCP Inspector. Progress messages go to
stderr in both modes.

Examples:
  tabula mcp serve
  tabula mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "tabula": {
        "command": "/path/to/tabula",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Toolkit:  toolkit,
		Settings: settingsService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	// stdout carries the protocol in stdio mode.
	logger.SetStatusOutput(cmd.ErrOrStderr())

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
