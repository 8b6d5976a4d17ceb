// Package mcpserver exposes the unused-file analysis as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server and registers the orphans tools.
type Server struct {
	server *mcp.Server
	logger *slog.Logger
	// configFile replaces per-project config discovery when set.
	configFile string
}

// NewServer creates a new MCP server with all tools and prompts registered.
// Log output must not go to stdout, which carries the protocol.
func NewServer(version string, logger *slog.Logger) *Server {
	if version == "" {
		version = "dev"
	}
	if logger == nil {
		logger = slog.Default()
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "orphans",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, logger: logger}
	s.registerTools()
	s.registerPrompts()
	return s
}

// SetConfigFile makes every tool call use the config file at path instead of
// the one found in the analyzed project.
func (s *Server) SetConfigFile(path string) {
	s.configFile = path
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Tool names, shared by registration and the registry manifest.
const (
	toolFindUnusedFiles = "find_unused_files"
	toolImportGraph     = "import_graph"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        toolFindUnusedFiles,
		Description: describeFindUnusedFiles(),
	}, s.handleFindUnusedFiles)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        toolImportGraph,
		Description: describeImportGraph(),
	}, s.handleImportGraph)
}
