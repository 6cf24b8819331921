package app

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/evanschultz/cereboard/internal/domain"
	"github.com/evanschultz/cereboard/internal/images"
	"github.com/evanschultz/cereboard/internal/reorder"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	DefaultColumns  []ColumnTemplate
	DefaultPriority domain.Priority
	Images          images.Optimizer
}

// ColumnTemplate seeds the columns of a new board.
type ColumnTemplate struct {
	Name  string
	Color string
}

// IDGenerator returns unique identifiers for stored images.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service is the board-data collaborator shared by the TUI, HTTP and MCP surfaces.
type Service struct {
	repo            Repository
	idGen           IDGenerator
	clock           Clock
	defaultColumns  []ColumnTemplate
	defaultPriority domain.Priority
	optimizer       images.Optimizer
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	templates := sanitizeColumnTemplates(cfg.DefaultColumns)
	if len(templates) == 0 {
		templates = defaultColumnTemplates()
	}
	priority := cfg.DefaultPriority
	if priority == "" {
		priority = domain.PriorityLow
	}

	return &Service{
		repo:            repo,
		idGen:           idGen,
		clock:           clock,
		defaultColumns:  templates,
		defaultPriority: domain.ParsePriority(string(priority)),
		optimizer:       images.NewOptimizer(cfg.Images.MaxWidth, cfg.Images.MaxHeight, cfg.Images.Quality),
	}
}

// EnsureDefaultBoard returns the first board, creating one when none exist.
func (s *Service) EnsureDefaultBoard(ctx context.Context) (domain.Board, error) {
	boards, err := s.repo.ListBoards(ctx)
	if err != nil {
		return domain.Board{}, err
	}
	if len(boards) > 0 {
		return boards[0], nil
	}
	return s.CreateBoard(ctx, "Inbox", "Default board")
}

// CreateBoard creates a board seeded with the default columns.
func (s *Service) CreateBoard(ctx context.Context, name, description string) (domain.Board, error) {
	now := s.clock()
	board, err := domain.NewBoard(name, description, now)
	if err != nil {
		return domain.Board{}, err
	}
	board, err = s.repo.CreateBoard(ctx, board)
	if err != nil {
		return domain.Board{}, err
	}
	for idx, tmpl := range s.defaultColumns {
		column, err := domain.NewColumn(board.ID, tmpl.Name, tmpl.Color, idx+1, now)
		if err != nil {
			return domain.Board{}, fmt.Errorf("create default column %q: %w", tmpl.Name, err)
		}
		if _, err := s.repo.CreateColumn(ctx, column); err != nil {
			return domain.Board{}, fmt.Errorf("persist default column %q: %w", tmpl.Name, err)
		}
	}
	return s.GetBoard(ctx, board.ID)
}

// UpdateBoard renames a board and replaces its description.
func (s *Service) UpdateBoard(ctx context.Context, boardID int64, name, description string) (domain.Board, error) {
	board, err := s.repo.GetBoard(ctx, boardID)
	if err != nil {
		return domain.Board{}, err
	}
	if err := board.Update(name, description, s.clock()); err != nil {
		return domain.Board{}, err
	}
	if err := s.repo.UpdateBoard(ctx, board); err != nil {
		return domain.Board{}, err
	}
	return board, nil
}

// DeleteBoard deletes a board with its columns and tasks.
func (s *Service) DeleteBoard(ctx context.Context, boardID int64) error {
	return s.repo.DeleteBoard(ctx, boardID)
}

// ListBoards lists boards without their columns.
func (s *Service) ListBoards(ctx context.Context) ([]domain.Board, error) {
	boards, err := s.repo.ListBoards(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(boards, func(a, b domain.Board) int { return cmp.Compare(a.ID, b.ID) })
	return boards, nil
}

// GetBoard returns a board with its ordered columns and their ordered tasks.
func (s *Service) GetBoard(ctx context.Context, boardID int64) (domain.Board, error) {
	board, err := s.repo.GetBoard(ctx, boardID)
	if err != nil {
		return domain.Board{}, err
	}
	columns, err := s.ListColumns(ctx, boardID)
	if err != nil {
		return domain.Board{}, err
	}
	tasks, err := s.repo.ListBoardTasks(ctx, boardID)
	if err != nil {
		return domain.Board{}, err
	}
	byColumn := map[int64][]domain.Task{}
	for _, task := range tasks {
		byColumn[task.ColumnID] = append(byColumn[task.ColumnID], task)
	}
	for idx := range columns {
		columnTasks := byColumn[columns[idx].ID]
		sortTasks(columnTasks)
		columns[idx].Tasks = columnTasks
	}
	board.Columns = columns
	return board, nil
}

// CreateColumn appends a column to a board.
func (s *Service) CreateColumn(ctx context.Context, boardID int64, name, color string) (domain.Column, error) {
	if _, err := s.repo.GetBoard(ctx, boardID); err != nil {
		return domain.Column{}, err
	}
	columns, err := s.repo.ListColumns(ctx, boardID)
	if err != nil {
		return domain.Column{}, err
	}
	order := 1
	for _, c := range columns {
		order = max(order, c.Order+1)
	}
	column, err := domain.NewColumn(boardID, name, color, order, s.clock())
	if err != nil {
		return domain.Column{}, err
	}
	return s.repo.CreateColumn(ctx, column)
}

// UpdateColumnInput holds input values for update column operations.
type UpdateColumnInput struct {
	ColumnID int64
	Name     string
	Color    string
}

// UpdateColumn renames and recolors a column.
func (s *Service) UpdateColumn(ctx context.Context, in UpdateColumnInput) (domain.Column, error) {
	column, err := s.repo.GetColumn(ctx, in.ColumnID)
	if err != nil {
		return domain.Column{}, err
	}
	now := s.clock()
	if err := column.Rename(in.Name, now); err != nil {
		return domain.Column{}, err
	}
	if err := column.SetColor(in.Color, now); err != nil {
		return domain.Column{}, err
	}
	if err := s.repo.UpdateColumn(ctx, column); err != nil {
		return domain.Column{}, err
	}
	return column, nil
}

// DeleteColumn deletes a column with its tasks and closes the order gap.
func (s *Service) DeleteColumn(ctx context.Context, columnID int64) error {
	column, err := s.repo.GetColumn(ctx, columnID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteColumn(ctx, columnID); err != nil {
		return err
	}
	remaining, err := s.ListColumns(ctx, column.BoardID)
	if err != nil {
		return err
	}
	before := columnItems(remaining)
	return s.repo.SetColumnOrders(ctx, reorder.Changed(before, reorder.Reindex(before)))
}

// ListColumns lists the columns of a board left to right.
func (s *Service) ListColumns(ctx context.Context, boardID int64) ([]domain.Column, error) {
	columns, err := s.repo.ListColumns(ctx, boardID)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(columns, func(a, b domain.Column) int {
		if a.Order == b.Order {
			return cmp.Compare(a.ID, b.ID)
		}
		return a.Order - b.Order
	})
	return columns, nil
}

// CreateTaskInput holds input values for create task operations.
type CreateTaskInput struct {
	ColumnID    int64
	Title       string
	Description string
	Priority    domain.Priority
	DueDate     *time.Time
}

// UpdateTaskInput holds input values for update task operations.
type UpdateTaskInput struct {
	TaskID      int64
	Title       string
	Description string
	Priority    domain.Priority
	DueDate     *time.Time
}

// CreateTask appends a task to the end of its column.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (domain.Task, error) {
	column, err := s.repo.GetColumn(ctx, in.ColumnID)
	if err != nil {
		return domain.Task{}, err
	}
	tasks, err := s.repo.ListTasks(ctx, in.ColumnID)
	if err != nil {
		return domain.Task{}, err
	}
	order := 1
	for _, t := range tasks {
		order = max(order, t.Order+1)
	}
	if in.Priority == "" {
		in.Priority = s.defaultPriority
	}

	task, err := domain.NewTask(domain.TaskInput{
		ColumnID:    in.ColumnID,
		Order:       order,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
	}, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	task, err = s.repo.CreateTask(ctx, task)
	if err != nil {
		return domain.Task{}, err
	}
	s.recordChange(ctx, column.BoardID, task.ID, domain.ChangeOperationCreate, map[string]string{
		"column_id": strconv.FormatInt(task.ColumnID, 10),
		"title":     task.Title,
	})
	return task, nil
}

// UpdateTask updates the editable fields of a task.
func (s *Service) UpdateTask(ctx context.Context, in UpdateTaskInput) (domain.Task, error) {
	task, err := s.repo.GetTask(ctx, in.TaskID)
	if err != nil {
		return domain.Task{}, err
	}
	if in.Priority == "" {
		in.Priority = task.Priority
	}
	if err := task.UpdateDetails(in.Title, in.Description, in.Priority, in.DueDate, s.clock()); err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	if column, err := s.repo.GetColumn(ctx, task.ColumnID); err == nil {
		s.recordChange(ctx, column.BoardID, task.ID, domain.ChangeOperationUpdate, map[string]string{
			"title":    task.Title,
			"priority": string(task.Priority),
		})
	}
	return task, nil
}

// DeleteTask deletes a task and closes the gap in its column.
func (s *Service) DeleteTask(ctx context.Context, taskID int64) error {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	column, err := s.repo.GetColumn(ctx, task.ColumnID)
	if err != nil {
		return err
	}
	siblings, err := s.orderedTasks(ctx, task.ColumnID)
	if err != nil {
		return err
	}
	before := taskItems(siblings)
	after, err := reorder.Remove(before, taskID)
	if err != nil {
		return fmt.Errorf("task %d: %w", taskID, ErrNotFound)
	}
	if err := s.repo.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	if err := s.repo.PlaceTasks(ctx, placements(task.ColumnID, reorder.Changed(before, after))); err != nil {
		return err
	}
	s.recordChange(ctx, column.BoardID, taskID, domain.ChangeOperationDelete, map[string]string{
		"column_id": strconv.FormatInt(task.ColumnID, 10),
		"title":     task.Title,
	})
	return nil
}

// GetTask returns one task.
func (s *Service) GetTask(ctx context.Context, taskID int64) (domain.Task, error) {
	return s.repo.GetTask(ctx, taskID)
}

// ListTasks lists every task, grouped by column and ordered within it.
func (s *Service) ListTasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.repo.ListAllTasks(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(tasks, func(a, b domain.Task) int {
		if a.ColumnID == b.ColumnID {
			return compareTasks(a, b)
		}
		return cmp.Compare(a.ColumnID, b.ColumnID)
	})
	return tasks, nil
}

// ListColumnTasks lists the tasks of a column top to bottom.
func (s *Service) ListColumnTasks(ctx context.Context, columnID int64) ([]domain.Task, error) {
	if _, err := s.repo.GetColumn(ctx, columnID); err != nil {
		return nil, err
	}
	return s.orderedTasks(ctx, columnID)
}

// ListBoardActivity lists recent change events for a board.
func (s *Service) ListBoardActivity(ctx context.Context, boardID int64, limit int) ([]domain.ChangeEvent, error) {
	if boardID <= 0 {
		return nil, domain.ErrInvalidBoardID
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListBoardChangeEvents(ctx, boardID, limit)
}

func (s *Service) orderedTasks(ctx context.Context, columnID int64) ([]domain.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, columnID)
	if err != nil {
		return nil, err
	}
	sortTasks(tasks)
	return tasks, nil
}

// recordChange appends to the activity ledger. Ledger failures never fail
// the mutation that produced them.
func (s *Service) recordChange(ctx context.Context, boardID, taskID int64, op domain.ChangeOperation, metadata map[string]string) {
	_ = s.repo.CreateChangeEvent(ctx, domain.ChangeEvent{
		BoardID:    boardID,
		TaskID:     taskID,
		Operation:  op,
		Metadata:   metadata,
		OccurredAt: s.clock().UTC(),
	})
}

func sortTasks(tasks []domain.Task) {
	slices.SortFunc(tasks, compareTasks)
}

func compareTasks(a, b domain.Task) int {
	if a.Order == b.Order {
		return cmp.Compare(a.ID, b.ID)
	}
	return a.Order - b.Order
}

func taskItems(tasks []domain.Task) []reorder.Item {
	out := make([]reorder.Item, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, reorder.Item{ID: t.ID, Order: t.Order})
	}
	return out
}

func columnItems(columns []domain.Column) []reorder.Item {
	out := make([]reorder.Item, 0, len(columns))
	for _, c := range columns {
		out = append(out, reorder.Item{ID: c.ID, Order: c.Order})
	}
	return out
}

func placements(columnID int64, assignments []reorder.Assignment) []TaskPlacement {
	out := make([]TaskPlacement, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, TaskPlacement{TaskID: a.ID, ColumnID: columnID, Order: a.Order})
	}
	return out
}

// defaultColumnTemplates returns default column templates.
func defaultColumnTemplates() []ColumnTemplate {
	return []ColumnTemplate{
		{Name: "To Do", Color: "#5b8def"},
		{Name: "In Progress", Color: "#f2b84b"},
		{Name: "Done", Color: "#4caf50"},
	}
}

// sanitizeColumnTemplates drops unnamed and duplicate templates.
func sanitizeColumnTemplates(in []ColumnTemplate) []ColumnTemplate {
	out := make([]ColumnTemplate, 0, len(in))
	seen := map[string]struct{}{}
	for _, tmpl := range in {
		tmpl.Name = strings.TrimSpace(tmpl.Name)
		tmpl.Color = strings.TrimSpace(tmpl.Color)
		if tmpl.Name == "" {
			continue
		}
		key := strings.ToLower(tmpl.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tmpl)
	}
	return out
}
