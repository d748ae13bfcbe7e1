// Package server provides the MCP server wrapper with lifecycle management.
package server

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// instructions is presented to connecting clients so models know when
// to reach for the graph.
const instructions = `Knowledge graph over ingested documents and facts.
Use ingest/add_fact to store knowledge (both return a job id; poll with
get_job_status), ask_question for synthesized answers, augment_text to
pull graph context into a prompt.`

// Server wraps the MCP server with logging middleware and lifecycle
// management.
type Server struct {
	mcp    *mcp.Server
	logger *slog.Logger
}

// New creates the MCP server with logging middleware installed. Tools
// are registered separately via MCPServer().
func New(version string, logger *slog.Logger) *Server {
	impl := &mcp.Implementation{
		Name:    "knwl",
		Version: version,
	}

	mcpServer := mcp.NewServer(impl, &mcp.ServerOptions{
		Instructions: instructions,
	})
	mcpServer.AddReceivingMiddleware(LoggingMiddleware(logger))

	return &Server{
		mcp:    mcpServer,
		logger: logger,
	}
}

// Run starts the server on stdio transport and blocks until disconnect
// or context cancellation.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server", "transport", "stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server for tool registration.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}
