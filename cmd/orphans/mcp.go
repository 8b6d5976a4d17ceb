package main

import (
	"fmt"

	"github.com/panbanda/orphans/internal/mcpserver"
	"github.com/spf13/cobra"
)

func newMCPCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Long: `Starts an MCP server over stdio transport that exposes the analysis as tools
that LLMs can invoke.

To use with an MCP client, add to its config:
  {
    "mcpServers": {
      "orphans": {
        "command": "orphans",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - find_unused_files   Files no entry point reaches through imports
  - import_graph        Resolved import edges and cycles`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := mcpserver.NewServer(version, o.logger)
			srv.SetConfigFile(o.configFile)
			return srv.Run(cmd.Context())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "manifest",
		Short: "Print the MCP registry manifest (server.json)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := mcpserver.GenerateManifest(version)
			if err != nil {
				return err
			}
			fmt.Fprintln(o.stdout, string(data))
			return nil
		},
	})
	return cmd
}
