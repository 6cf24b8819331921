// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"

	"github.com/evanschultz/cereboard/internal/app"
	"github.com/evanschultz/cereboard/internal/domain"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// BoardService is the board-data surface both transports serve.
type BoardService interface {
	ListBoards(context.Context) ([]domain.Board, error)
	CreateBoard(ctx context.Context, name, description string) (domain.Board, error)
	GetBoard(context.Context, int64) (domain.Board, error)
	ListTasks(context.Context) ([]domain.Task, error)
	GetTask(context.Context, int64) (domain.Task, error)
	ListColumnTasks(context.Context, int64) ([]domain.Task, error)
	CreateTask(context.Context, app.CreateTaskInput) (domain.Task, error)
	UpdateTask(context.Context, app.UpdateTaskInput) (domain.Task, error)
	MoveTask(context.Context, int64, domain.MoveRequest) (domain.Task, error)
	DeleteTask(context.Context, int64) error
	ApplyColumnMove(ctx context.Context, columnID, targetColumnID int64) error
}

// Board is the wire shape of a board.
type Board struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	Columns     []Column  `json:"columns"`
}

// Column is the wire shape of a column.
type Column struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Order   int    `json:"order"`
	BoardID int64  `json:"boardId"`
	Color   string `json:"color"`
	Tasks   []Task `json:"tasks"`
}

// Task is the wire shape of a task.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ColumnID    int64      `json:"columnId"`
	Order       int        `json:"order"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    string     `json:"priority"`
}

// CreateBoardRequest is the body of a board creation.
type CreateBoardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TaskRequest is the body of a task creation or update.
type TaskRequest struct {
	ID          int64      `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ColumnID    int64      `json:"columnId"`
	Order       int        `json:"order,omitempty"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    string     `json:"priority,omitempty"`
}

// MoveTaskRequest places a task at a 1-based order in a column.
type MoveTaskRequest struct {
	ColumnID int64 `json:"columnId"`
	Order    int   `json:"order"`
}

// Domain converts the request into a domain move.
func (r MoveTaskRequest) Domain() domain.MoveRequest {
	return domain.MoveRequest{ColumnID: r.ColumnID, Order: r.Order}
}

// MoveColumnRequest moves a column into the slot of another.
type MoveColumnRequest struct {
	TargetColumnID int64 `json:"targetColumnId"`
}

// BoardFromDomain converts a board with its columns and tasks.
func BoardFromDomain(b domain.Board) Board {
	out := Board{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		CreatedAt:   b.CreatedAt.UTC(),
		Columns:     make([]Column, 0, len(b.Columns)),
	}
	for _, c := range b.Columns {
		out.Columns = append(out.Columns, ColumnFromDomain(c))
	}
	return out
}

// BoardsFromDomain converts board summaries.
func BoardsFromDomain(in []domain.Board) []Board {
	out := make([]Board, 0, len(in))
	for _, b := range in {
		out = append(out, BoardFromDomain(b))
	}
	return out
}

// ColumnFromDomain converts a column with its tasks.
func ColumnFromDomain(c domain.Column) Column {
	return Column{
		ID:      c.ID,
		Name:    c.Name,
		Order:   c.Order,
		BoardID: c.BoardID,
		Color:   c.Color,
		Tasks:   TasksFromDomain(c.Tasks),
	}
}

// TaskFromDomain converts one task.
func TaskFromDomain(t domain.Task) Task {
	return Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		ColumnID:    t.ColumnID,
		Order:       t.Order,
		DueDate:     t.DueDate,
		Priority:    string(t.Priority),
	}
}

// TasksFromDomain converts tasks in order.
func TasksFromDomain(in []domain.Task) []Task {
	out := make([]Task, 0, len(in))
	for _, t := range in {
		out = append(out, TaskFromDomain(t))
	}
	return out
}

// Priority maps a wire priority onto the domain. Empty keeps the service
// default; unknown values become low.
func Priority(raw string) domain.Priority {
	if raw == "" {
		return ""
	}
	return domain.ParsePriority(raw)
}
