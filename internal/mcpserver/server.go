// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes organizer tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/organizer/internal/apperr"
	"github.com/starford/organizer/internal/models"
	"github.com/starford/organizer/internal/organizer"
	"github.com/starford/organizer/internal/parser"
	"github.com/starford/organizer/internal/ranking"
)

const captureFormatURI = "organizer://capture-format"

// Server wraps the MCP server with organizer tools.
type Server struct {
	mcp *server.MCPServer
	svc *organizer.Service
}

// New creates a new MCP server with all organizer tools registered.
func New(svc *organizer.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Organizer",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	kind := mcp.WithString("kind", mcp.Required(),
		mcp.Enum(string(models.KindItem), string(models.KindNote)),
		mcp.Description("Collection name"))
	direction := mcp.WithString("direction", mcp.Required(),
		mcp.Enum(string(ranking.Up), string(ranking.Down)),
		mcp.Description("Move one position towards the top (up) or bottom (down)"))

	s.mcp.AddTool(mcp.NewTool("list_records",
		mcp.WithDescription("List the records of a collection in display order."),
		kind,
	), s.listRecords)

	s.mcp.AddTool(mcp.NewTool("get_record",
		mcp.WithDescription("Read one record with its links and tasks."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
	), s.getRecord)

	s.mcp.AddTool(mcp.NewTool("create_record",
		mcp.WithDescription("Append a record to the end of a collection. "+
			"At most three links; every link needs a URL."),
		kind,
		mcp.WithString("title", mcp.Description("Record title")),
		mcp.WithString("body", mcp.Description("Free text")),
		mcp.WithArray("links", mcp.Description("Up to three titled links"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title": map[string]any{"type": "string"},
					"url":   map[string]any{"type": "string"},
				},
				"required": []string{"url"},
			})),
		mcp.WithArray("tasks", mcp.Description("Task texts appended to the tasks list"),
			mcp.Items(map[string]any{"type": "string"})),
	), s.createRecord)

	s.mcp.AddTool(mcp.NewTool("capture",
		mcp.WithDescription("Create a record from Markdown in the capture format. "+
			"Read the format first via get_capture_format or the "+captureFormatURI+" resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown capture text")),
	), s.capture)

	s.mcp.AddTool(mcp.NewTool("move_record",
		mcp.WithDescription("Move a record one position within its collection and return the new order."),
		kind,
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
		direction,
	), s.moveRecord)

	s.mcp.AddTool(mcp.NewTool("delete_record",
		mcp.WithDescription("Delete a record and its tasks."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
	), s.deleteRecord)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List every task in display order."),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Attach a task to a record. It goes to the end of the tasks list."),
		mcp.WithString("record_id", mcp.Required(), mcp.Description("Record id")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Task text")),
	), s.addTask)

	s.mcp.AddTool(mcp.NewTool("move_task",
		mcp.WithDescription("Move a task one position within the tasks list and return the new order."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
		direction,
	), s.moveTask)

	s.mcp.AddTool(mcp.NewTool("get_capture_format",
		mcp.WithDescription("Returns the Markdown capture format used by the inbox and the capture tool."),
	), s.getCaptureFormat)

	s.mcp.AddResource(
		mcp.NewResource(captureFormatURI, "Capture Format",
			mcp.WithResourceDescription("Markdown format for capture files."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCaptureFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
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

func directionArg(req mcp.CallToolRequest) (ranking.Direction, error) {
	raw, err := req.RequireString("direction")
	if err != nil {
		return "", err
	}
	return ranking.ParseDirection(raw)
}

func (s *Server) listRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	recs, err := s.svc.ListRecords(ctx, models.Kind(kind))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(recs)
}

func (s *Server) getRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.GetRecord(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rec)
}

func (s *Server) createRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Kind string `json:"kind"`
		models.Draft
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.CreateRecord(ctx, models.Kind(args.Kind), args.Draft)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rec)
}

func (s *Server) capture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c := parser.Parse([]byte(content))
	rec, err := s.svc.CreateRecord(ctx, c.Kind, c.Draft)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rec)
}

func (s *Server) moveRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir, err := directionArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	recs, err := s.svc.MoveRecord(ctx, models.Kind(kind), id, dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(recs)
}

func (s *Server) deleteRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteRecord(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) listTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks, err := s.svc.ListTasks(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tasks)
}

func (s *Server) addTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recordID, err := req.RequireString("record_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.svc.AddTask(ctx, recordID, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(t)
}

func (s *Server) moveTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir, err := directionArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tasks, err := s.svc.MoveTask(ctx, id, dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tasks)
}

func (s *Server) getCaptureFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(CaptureFormat), nil
}

func (s *Server) readCaptureFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      captureFormatURI,
			MIMEType: "text/markdown",
			Text:     CaptureFormat,
		},
	}, nil
}
