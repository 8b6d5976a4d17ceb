package mcpserver

import (
	"bytes"
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/orphans/internal/output"
	"github.com/panbanda/orphans/pkg/analyzer/orphans"
	"github.com/panbanda/orphans/pkg/config"
)

// AnalyzeInput is the input shared by all tools.
type AnalyzeInput struct {
	Path   string `json:"path,omitempty" jsonschema:"Project directory containing the source root and tsconfig.json. Defaults to the current directory."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

func getPath(input AnalyzeInput) string {
	if input.Path == "" {
		return "."
	}
	return input.Path
}

func getFormat(input AnalyzeInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data output.Renderable, format output.Format) (string, error) {
	var buf bytes.Buffer
	switch format {
	case output.FormatJSON:
		if err := output.EncodeJSON(&buf, data.RenderData()); err != nil {
			return "", err
		}
	case output.FormatMarkdown:
		if err := data.RenderMarkdown(&buf); err != nil {
			return "", err
		}
	default:
		return output.MarshalTOON(data.RenderData())
	}
	return buf.String(), nil
}

func toolResult(data output.Renderable, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// analyze runs one analysis of the project at dir with the config found there.
func (s *Server) analyze(ctx context.Context, dir string) (*orphans.Result, error) {
	opts := []config.LoadOption{config.WithDir(dir)}
	if s.configFile != "" {
		opts = append(opts, config.WithPath(s.configFile))
	}
	loaded, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, err
	}

	a, err := orphans.Open(dir, orphans.WithConfig(loaded.Config), orphans.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	defer a.Close()

	return a.Run(ctx)
}

func (s *Server) handleFindUnusedFiles(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	result, err := s.analyze(ctx, getPath(input))
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(result.Report, getFormat(input))
}

func (s *Server) handleImportGraph(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	result, err := s.analyze(ctx, getPath(input))
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(result.Graph.Export(result.Roots), getFormat(input))
}
