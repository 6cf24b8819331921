// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/evanschultz/cereboard/internal/adapters/server/common"
	"github.com/evanschultz/cereboard/internal/app"
	"github.com/evanschultz/cereboard/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the board tools.
func NewHandler(cfg Config, boards common.BoardService) (*Handler, error) {
	if boards == nil {
		return nil, fmt.Errorf("board service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerBoardTools(mcpSrv, boards)
	registerTaskTools(mcpSrv, boards)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "cereboard"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerBoardTools registers the board and column tools.
func registerBoardTools(srv *mcpserver.MCPServer, boards common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"cereboard.list_boards",
			mcp.WithDescription("List boards without their columns."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			rows, err := boards.ListBoards(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("list_boards", map[string]any{"boards": common.BoardsFromDomain(rows)})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"cereboard.get_board",
			mcp.WithDescription("Return one board with its ordered columns and tasks."),
			mcp.WithNumber("board_id", mcp.Required(), mcp.Description("Board identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			boardID, err := req.RequireInt("board_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			board, err := boards.GetBoard(ctx, int64(boardID))
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("get_board", common.BoardFromDomain(board))
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"cereboard.move_column",
			mcp.WithDescription("Move a column into the position held by another column of the same board."),
			mcp.WithNumber("column_id", mcp.Required(), mcp.Description("Column to move")),
			mcp.WithNumber("target_column_id", mcp.Required(), mcp.Description("Column whose position it takes")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			columnID, err := req.RequireInt("column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			targetID, err := req.RequireInt("target_column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := boards.ApplyColumnMove(ctx, int64(columnID), int64(targetID)); err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("move_column", map[string]any{"moved": true})
		},
	)
}

// registerTaskTools registers the task tools.
func registerTaskTools(srv *mcpserver.MCPServer, boards common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"cereboard.create_task",
			mcp.WithDescription("Append a task to the end of a column."),
			mcp.WithNumber("column_id", mcp.Required(), mcp.Description("Column identifier")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
			mcp.WithString("description", mcp.Description("Markdown description")),
			mcp.WithString("priority", mcp.Description("Task priority"), mcp.Enum("low", "medium", "high")),
			mcp.WithString("due_date", mcp.Description("Due date in RFC3339")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			columnID, err := req.RequireInt("column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			due, err := parseDueDate(req.GetString("due_date", ""))
			if err != nil {
				return mcp.NewToolResultError(common.CodeInvalidRequest + ": " + err.Error()), nil
			}
			task, err := boards.CreateTask(ctx, app.CreateTaskInput{
				ColumnID:    int64(columnID),
				Title:       title,
				Description: req.GetString("description", ""),
				Priority:    common.Priority(req.GetString("priority", "")),
				DueDate:     due,
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("create_task", common.TaskFromDomain(task))
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"cereboard.move_task",
			mcp.WithDescription("Place a task at a 1-based order within a column; both columns are reindexed."),
			mcp.WithNumber("task_id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithNumber("column_id", mcp.Required(), mcp.Description("Destination column")),
			mcp.WithNumber("order", mcp.Required(), mcp.Description("Destination order, starting at 1")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireInt("task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			columnID, err := req.RequireInt("column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			order, err := req.RequireInt("order")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			task, err := boards.MoveTask(ctx, int64(taskID), domain.MoveRequest{ColumnID: int64(columnID), Order: order})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("move_task", common.TaskFromDomain(task))
		},
	)
}

// jsonResult encodes one structured tool result.
func jsonResult(tool string, payload any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", tool, err)
	}
	return result, nil
}

// parseDueDate parses an optional RFC3339 due date.
func parseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("due_date must be RFC3339: %w", err)
	}
	return &ts, nil
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	if err == nil {
		return mcp.NewToolResultError("unknown error")
	}
	return mcp.NewToolResultError(common.ErrorCode(err) + ": " + err.Error())
}
