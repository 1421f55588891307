package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dpfaulkner/redline/internal/application"
	"github.com/dpfaulkner/redline/internal/domain/model"
)

// CommentArgs are the arguments for the comment tool.
type CommentArgs struct {
	Path      string `json:"path" jsonschema:"File path relative to the repository root"`
	Line      int    `json:"line" jsonschema:"Line number in the diff"`
	Side      string `json:"side,omitempty" jsonschema:"RIGHT for the new file version, LEFT for the old; omit to let routing decide"`
	ThreadID  int64  `json:"thread_id,omitempty" jsonschema:"Root comment id of an existing thread to reply into"`
	NewThread bool   `json:"new_thread,omitempty" jsonschema:"Force a new thread even when one already exists at the location"`
	Body      string `json:"body" jsonschema:"Markdown comment body"`
}

// SuggestArgs are the arguments for the suggest tool.
type SuggestArgs struct {
	Path       string `json:"path" jsonschema:"File path relative to the repository root"`
	Line       int    `json:"line" jsonschema:"Line number in the new file version"`
	Side       string `json:"side,omitempty" jsonschema:"Must be RIGHT or omitted; suggestions cannot target removed lines"`
	ThreadID   int64  `json:"thread_id,omitempty" jsonschema:"Root comment id of an existing thread to reply into"`
	NewThread  bool   `json:"new_thread,omitempty" jsonschema:"Force a new thread even when one already exists at the location"`
	Suggestion string `json:"suggestion" jsonschema:"Replacement code for the line, without the suggestion fence"`
	Comment    string `json:"comment,omitempty" jsonschema:"Optional prose placed above the suggestion block"`
}

// ReplyArgs are the arguments for the reply tool.
type ReplyArgs struct {
	CommentID int64  `json:"comment_id" jsonschema:"Id of the comment to reply to; reply ids are redirected to their thread root"`
	Body      string `json:"body" jsonschema:"Markdown reply body"`
}

// UpdateArgs are the arguments for the update_comment tool.
type UpdateArgs struct {
	CommentID int64  `json:"comment_id" jsonschema:"Id of one of your own comments"`
	Body      string `json:"body" jsonschema:"Full replacement body"`
}

// ResolveArgs are the arguments for the resolve_thread tool.
type ResolveArgs struct {
	ThreadID    int64  `json:"thread_id" jsonschema:"Root comment id of the thread to resolve"`
	Explanation string `json:"explanation" jsonschema:"Reason the thread is settled; posted as a reply before resolving"`
}

// SummaryArgs are the arguments for the publish_summary tool.
type SummaryArgs struct {
	Body string `json:"body" jsonschema:"Markdown body of the review summary"`
}

// ListThreadsArgs are the arguments for the list_threads tool.
type ListThreadsArgs struct{}

// ListThreadsResult is the result of the list_threads tool.
type ListThreadsResult struct {
	Threads []model.ThreadCandidate `json:"threads"`
}

// handleComment handles the comment tool call. Refusals come back as normal
// results with ok=false; only transport failures surface as tool errors.
func (s *Server) handleComment(ctx context.Context, req *mcp.CallToolRequest, args CommentArgs) (*mcp.CallToolResult, model.WriteResult, error) {
	res, err := s.svc.Comment(ctx, application.CommentRequest{
		Path:      args.Path,
		Line:      args.Line,
		Side:      model.Side(args.Side),
		ThreadID:  args.ThreadID,
		NewThread: args.NewThread,
		Body:      args.Body,
	})
	if err != nil {
		return nil, model.WriteResult{}, err
	}
	return nil, res, nil
}

// handleSuggest handles the suggest tool call.
func (s *Server) handleSuggest(ctx context.Context, req *mcp.CallToolRequest, args SuggestArgs) (*mcp.CallToolResult, model.WriteResult, error) {
	res, err := s.svc.Suggest(ctx, application.SuggestRequest{
		Path:       args.Path,
		Line:       args.Line,
		Side:       model.Side(args.Side),
		ThreadID:   args.ThreadID,
		NewThread:  args.NewThread,
		Suggestion: args.Suggestion,
		Comment:    args.Comment,
	})
	if err != nil {
		return nil, model.WriteResult{}, err
	}
	return nil, res, nil
}

// handleReply handles the reply tool call.
func (s *Server) handleReply(ctx context.Context, req *mcp.CallToolRequest, args ReplyArgs) (*mcp.CallToolResult, model.WriteResult, error) {
	res, err := s.svc.Reply(ctx, args.CommentID, args.Body)
	if err != nil {
		return nil, model.WriteResult{}, err
	}
	return nil, res, nil
}

// handleUpdate handles the update_comment tool call.
func (s *Server) handleUpdate(ctx context.Context, req *mcp.CallToolRequest, args UpdateArgs) (*mcp.CallToolResult, model.WriteResult, error) {
	res, err := s.svc.Update(ctx, args.CommentID, args.Body)
	if err != nil {
		return nil, model.WriteResult{}, err
	}
	return nil, res, nil
}

// handleResolve handles the resolve_thread tool call.
func (s *Server) handleResolve(ctx context.Context, req *mcp.CallToolRequest, args ResolveArgs) (*mcp.CallToolResult, model.WriteResult, error) {
	res, err := s.svc.Resolve(ctx, args.ThreadID, args.Explanation)
	if err != nil {
		return nil, model.WriteResult{}, err
	}
	return nil, res, nil
}

// handlePublishSummary handles the publish_summary tool call.
func (s *Server) handlePublishSummary(ctx context.Context, req *mcp.CallToolRequest, args SummaryArgs) (*mcp.CallToolResult, model.WriteResult, error) {
	res, err := s.svc.PublishSummary(ctx, args.Body)
	if err != nil {
		return nil, model.WriteResult{}, err
	}
	return nil, res, nil
}

// handleListThreads handles the list_threads tool call.
func (s *Server) handleListThreads(ctx context.Context, req *mcp.CallToolRequest, args ListThreadsArgs) (*mcp.CallToolResult, ListThreadsResult, error) {
	threads := s.svc.ListThreads()
	if threads == nil {
		threads = []model.ThreadCandidate{}
	}
	return nil, ListThreadsResult{Threads: threads}, nil
}
