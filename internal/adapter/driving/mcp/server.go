// Package mcp is the MCP driving adapter: it exposes the write operations
// and the thread listing as typed tools for a reasoning loop speaking the
// Model Context Protocol.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dpfaulkner/redline/internal/application"
)

// Server wraps the MCP server around one loaded pull request session.
type Server struct {
	server *mcp.Server
	svc    *application.FeedbackService
}

// NewServer creates a new MCP server with all review tools registered.
func NewServer(svc *application.FeedbackService, version string) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "redline",
		Version: version,
	}, nil)

	s := &Server{
		server: mcpServer,
		svc:    svc,
	}
	s.registerTools()

	return s
}

// Run starts the MCP server on the given transport.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// registerTools registers the review tools. Tool descriptions are written
// for the calling reasoning loop: they spell out when a refusal comes back
// and what to do with it.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "comment",
		Description: "Place an inline review comment at a file location. " +
			"Replies automatically when exactly one thread already exists there; " +
			"refuses with candidates when the location is ambiguous, and with ok=false " +
			"plus an instruction when the write should not happen. Follow the instruction.",
	}, s.handleComment)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "suggest",
		Description: "Place a GitHub suggestion block proposing replacement code for a line " +
			"in the new file version. Side LEFT is refused; use comment for removed code.",
	}, s.handleSuggest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "reply",
		Description: "Reply to a comment by its id, skipping location lookup. " +
			"Reply ids are redirected to their thread root.",
	}, s.handleReply)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "update_comment",
		Description: "Rewrite one of your earlier comments in place. " +
			"Use this when a reply attempt was refused as a duplicate.",
	}, s.handleUpdate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "resolve_thread",
		Description: "Resolve a thread you opened, posting an explanation reply first. " +
			"Requires a non-empty explanation; refuses on threads opened by others.",
	}, s.handleResolve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "publish_summary",
		Description: "Publish or update the single top-level review summary comment. " +
			"Repeated calls rewrite the same comment instead of stacking new ones.",
	}, s.handlePublishSummary)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "list_threads",
		Description: "List every known review thread on the pull request, " +
			"newest activity first, with resolution state and thread ids usable as targets.",
	}, s.handleListThreads)
}
