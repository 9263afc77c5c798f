// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/affinity/application/service"
	"github.com/helixml/affinity/domain/goal"
)

// DefaultMatchLimit is the number of matches returned when the caller does
// not set a limit.
const DefaultMatchLimit = 10

// GoalMatcher ranks contacts against a goal.
type GoalMatcher interface {
	MatchGoal(ctx context.Context, goalID string, opts ...service.MatchingOption) ([]service.Match, error)
}

// GoalLister lists an owner's goals.
type GoalLister interface {
	Goals(ctx context.Context, ownerID string) ([]goal.Goal, error)
}

// Server wraps the MCP server with affinity tools.
type Server struct {
	mcpServer *server.MCPServer
	matcher   GoalMatcher
	goals     GoalLister
	logger    *slog.Logger
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(matcher GoalMatcher, goals GoalLister, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		matcher: matcher,
		goals:   goals,
		logger:  logger,
	}

	mcpServer := server.NewMCPServer(
		"affinity",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	matchTool := mcp.NewTool("match_goal",
		mcp.WithDescription("Rank the goal owner's contacts by how well they fit the goal"),
		mcp.WithString("goal_id",
			mcp.Required(),
			mcp.Description("ID of the goal to match"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of contacts to return (default: %d, 0 for all)", DefaultMatchLimit)),
		),
	)
	mcpServer.AddTool(matchTool, s.handleMatchGoal)

	listTool := mcp.NewTool("list_goals",
		mcp.WithDescription("List a user's goals"),
		mcp.WithString("owner_id",
			mcp.Required(),
			mcp.Description("ID of the user who owns the goals"),
		),
	)
	mcpServer.AddTool(listTool, s.handleListGoals)
}

type matchResult struct {
	Rank        int     `json:"rank"`
	ContactID   string  `json:"contact_id"`
	ContactName string  `json:"contact_name"`
	Score       float64 `json:"score"`
	Available   bool    `json:"available"`
}

func (s *Server) handleMatchGoal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goalID, err := request.RequireString("goal_id")
	if err != nil || goalID == "" {
		return mcp.NewToolResultError("goal_id is required"), nil
	}
	limit := request.GetInt("limit", DefaultMatchLimit)
	if limit < 0 {
		return mcp.NewToolResultError("limit must not be negative"), nil
	}

	matches, err := s.matcher.MatchGoal(ctx, goalID, service.WithLimit(limit))
	switch {
	case errors.Is(err, service.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("goal %s not found", goalID)), nil
	case errors.Is(err, service.ErrEmbeddingUnavailable):
		s.logger.WarnContext(ctx, "goal embedding unavailable", slog.String("goal_id", goalID), slog.Any("error", err))
		return mcp.NewToolResultError("the goal could not be embedded right now, try again later"), nil
	case err != nil:
		s.logger.ErrorContext(ctx, "match goal failed", slog.String("goal_id", goalID), slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("match failed: %v", err)), nil
	}

	results := make([]matchResult, len(matches))
	for i, m := range matches {
		results[i] = matchResult{
			Rank:        m.Rank,
			ContactID:   m.ContactID,
			ContactName: m.ContactName,
			Score:       m.Score,
			Available:   m.Available,
		}
	}
	return jsonResult(results)
}

type goalResult struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) handleListGoals(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ownerID, err := request.RequireString("owner_id")
	if err != nil || ownerID == "" {
		return mcp.NewToolResultError("owner_id is required"), nil
	}

	goals, err := s.goals.Goals(ctx, ownerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "list goals failed", slog.String("owner_id", ownerID), slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("list goals failed: %v", err)), nil
	}

	results := make([]goalResult, len(goals))
	for i, g := range goals {
		results[i] = goalResult{ID: g.ID(), Title: g.Title(), Description: g.Description()}
	}
	return jsonResult(results)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
