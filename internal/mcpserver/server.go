// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the tools directory for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/vibeindex/internal/apperr"
	"github.com/starford/vibeindex/internal/catalog"
	"github.com/starford/vibeindex/internal/toolservice"
)

const (
	catalogURI = "vibeindex://catalog"
	formatURI  = "vibeindex://catalog-format"

	defaultLimit = 20
)

// Server wraps the MCP server with directory tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *toolservice.Service
	logger *slog.Logger
}

// New creates a new MCP server with all directory tools registered.
func New(name, version string, svc *toolservice.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{svc: svc, logger: logger}

	s.mcp = server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_tools",
		mcp.WithDescription("Fuzzy search the tools directory by name, description, category, tags and URL. "+
			"Results are ranked best first; lower rank is better."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text; typos are tolerated")),
		mcp.WithString("category", mcp.Description("Restrict to one category (default: all)")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of ranked results (default 20, 0 for no limit); a blank query browses in full")),
	), s.searchTools)

	s.mcp.AddTool(mcp.NewTool("browse_tools",
		mcp.WithDescription("List tools grouped by category, in directory order."),
		mcp.WithString("category", mcp.Description("Restrict to one category (default: all)")),
	), s.browseTools)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the categories of the directory with tool counts. "+
			"The first entry, \"all\", selects every category."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("get_tool",
		mcp.WithDescription("Get one tool by its exact name (case-insensitive)."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Tool name, e.g. Vibe Design")),
	), s.getTool)

	s.mcp.AddResource(
		mcp.NewResource(catalogURI, "Tools Catalog",
			mcp.WithResourceDescription("Every tool in the directory, in catalog order."),
			mcp.WithMIMEType("application/json"),
		),
		s.readCatalogResource,
	)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Catalog Format",
			mcp.WithResourceDescription("YAML format of catalog documents."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// Serve speaks MCP over in/out (normally stdin/stdout) until ctx is
// cancelled or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("mcp: serving on stdio")
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchTools(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category := req.GetString("category", catalog.All)
	limit := req.GetInt("limit", defaultLimit)

	res, err := s.svc.Search(ctx, query, category, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.logger.Debug("mcp: search_tools",
		slog.String("query", query),
		slog.String("category", category),
		slog.Int("results", res.Len()))
	return jsonResult(res)
}

func (s *Server) browseTools(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.Browse(ctx, req.GetString("category", catalog.All))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res.Groups)
}

func (s *Server) listCategories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cats, err := s.svc.Categories(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(cats)
}

func (s *Server) getTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tool, err := s.svc.GetTool(ctx, name)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", name)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tool)
}

func (s *Server) readCatalogResource(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(s.svc.Engine().Catalog().Records(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      catalogURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     CatalogFormat,
		},
	}, nil
}
