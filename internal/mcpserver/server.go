// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes board operations for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mtaverne/corkboard/internal/board"
	"github.com/mtaverne/corkboard/internal/store"
)

// Server wraps the MCP server with board tools.
type Server struct {
	mcp   *server.MCPServer
	store store.BoardStore
}

// New creates a new MCP server with all board tools registered.
func New(s store.BoardStore) *Server {
	srv := &Server{store: s}

	srv.mcp = server.NewMCPServer(
		"Corkboard",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	srv.mcp.AddTool(mcp.NewTool("create_board",
		mcp.WithDescription("Create a new sticky-note board. Returns the stored board "+
			"including its 8-character share identifier."),
		mcp.WithString("notes", mcp.Required(),
			mcp.Description(`JSON array of notes, e.g. [{"id":"n1","text":"hello","color":"yellow","x":0,"y":0}]`)),
	), srv.createBoard)

	srv.mcp.AddTool(mcp.NewTool("get_board",
		mcp.WithDescription("Read the board stored under an identifier."),
		mcp.WithString("id", mcp.Required(), mcp.Description("8-character board identifier")),
	), srv.getBoard)

	srv.mcp.AddTool(mcp.NewTool("replace_board",
		mcp.WithDescription("Overwrite all notes of an existing board. The notes array must be non-empty; "+
			"use delete_board to empty a board."),
		mcp.WithString("id", mcp.Required(), mcp.Description("8-character board identifier")),
		mcp.WithString("notes", mcp.Required(), mcp.Description("JSON array of notes")),
	), srv.replaceBoard)

	srv.mcp.AddTool(mcp.NewTool("delete_board",
		mcp.WithDescription("Delete the board stored under an identifier."),
		mcp.WithString("id", mcp.Required(), mcp.Description("8-character board identifier")),
	), srv.deleteBoard)

	srv.mcp.AddTool(mcp.NewTool("board_stats",
		mcp.WithDescription("Aggregate store diagnostics: board and note counts plus the five "+
			"most-recently-accessed boards."),
	), srv.boardStats)

	return srv
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func parseNotes(req mcp.CallToolRequest) ([]board.Note, error) {
	raw, err := req.RequireString("notes")
	if err != nil {
		return nil, err
	}
	var notes []board.Note
	if err := json.Unmarshal([]byte(raw), &notes); err != nil {
		return nil, fmt.Errorf("notes must be a JSON array: %w", err)
	}
	return notes, nil
}

func resultJSON(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

func (s *Server) createBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := parseNotes(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.store.Create(notes)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return resultJSON(rec), nil
}

func (s *Server) getBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.store.Get(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return resultJSON(rec), nil
}

func (s *Server) replaceBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := parseNotes(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.store.Replace(id, notes)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return resultJSON(rec), nil
}

func (s *Server) deleteBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sum, err := s.store.Remove(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return resultJSON(sum), nil
}

func (s *Server) boardStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	diag, err := s.store.Diagnostics()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return resultJSON(diag), nil
}
