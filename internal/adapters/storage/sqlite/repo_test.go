package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/evanschultz/cereboard/internal/app"
	"github.com/evanschultz/cereboard/internal/domain"
	"github.com/evanschultz/cereboard/internal/images"
	"github.com/evanschultz/cereboard/internal/reorder"
)

func newMemoryRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}

func fixedNow() time.Time {
	return time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
}

func TestRepository_BoardColumnTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "cereboard.db")
	repo, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	now := fixedNow()
	board, err := domain.NewBoard("Example", "desc", now)
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	board, err = repo.CreateBoard(ctx, board)
	if err != nil {
		t.Fatalf("CreateBoard() error = %v", err)
	}
	if board.ID <= 0 {
		t.Fatalf("expected assigned board id, got %d", board.ID)
	}

	column, err := domain.NewColumn(board.ID, "To Do", "#5B8DEF", 1, now)
	if err != nil {
		t.Fatalf("NewColumn() error = %v", err)
	}
	column, err = repo.CreateColumn(ctx, column)
	if err != nil {
		t.Fatalf("CreateColumn() error = %v", err)
	}

	due := now.Add(24 * time.Hour)
	task, err := domain.NewTask(domain.TaskInput{
		ColumnID:    column.ID,
		Order:       1,
		Title:       "Task title",
		Description: "- one\n    - two",
		Priority:    domain.PriorityHigh,
		DueDate:     &due,
	}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	task, err = repo.CreateTask(ctx, task)
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	repo, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	loaded, err := repo.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if loaded.Title != "Task title" || loaded.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected task %#v", loaded)
	}
	if loaded.Description != "- one\n    - two" {
		t.Fatalf("description indentation lost: %q", loaded.Description)
	}
	if loaded.DueDate == nil || !loaded.DueDate.Equal(due) {
		t.Fatalf("unexpected due date %v", loaded.DueDate)
	}
	loadedColumn, err := repo.GetColumn(ctx, column.ID)
	if err != nil {
		t.Fatalf("GetColumn() error = %v", err)
	}
	if loadedColumn.Color != "#5b8def" || loadedColumn.Order != 1 {
		t.Fatalf("unexpected column %#v", loadedColumn)
	}

	loaded.Title = "Renamed"
	loaded.Priority = domain.PriorityMedium
	loaded.DueDate = nil
	if err := repo.UpdateTask(ctx, loaded); err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	updated, err := repo.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if updated.Title != "Renamed" || updated.DueDate != nil {
		t.Fatalf("unexpected updated task %#v", updated)
	}

	if err := repo.DeleteBoard(ctx, board.ID); err != nil {
		t.Fatalf("DeleteBoard() error = %v", err)
	}
	if _, err := repo.GetTask(ctx, task.ID); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected cascade delete of task, got %v", err)
	}
	if _, err := repo.GetColumn(ctx, column.ID); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected cascade delete of column, got %v", err)
	}
}

func TestRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)

	if _, err := repo.GetBoard(ctx, 1); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("GetBoard() expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateBoard(ctx, domain.Board{ID: 1, Name: "x"}); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("UpdateBoard() expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteColumn(ctx, 9); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("DeleteColumn() expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteTask(ctx, 9); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("DeleteTask() expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetImage(ctx, "nope"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("GetImage() expected ErrNotFound, got %v", err)
	}
}

func TestRepository_ExplicitIDsAreKept(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)
	board, err := repo.CreateBoard(ctx, domain.Board{ID: 42, Name: "Imported", CreatedAt: fixedNow(), UpdatedAt: fixedNow()})
	if err != nil {
		t.Fatalf("CreateBoard() error = %v", err)
	}
	if board.ID != 42 {
		t.Fatalf("expected id 42, got %d", board.ID)
	}
	next, err := repo.CreateBoard(ctx, domain.Board{Name: "Next", CreatedAt: fixedNow(), UpdatedAt: fixedNow()})
	if err != nil {
		t.Fatalf("CreateBoard() error = %v", err)
	}
	if next.ID <= 42 {
		t.Fatalf("expected id after 42, got %d", next.ID)
	}
	boards, err := repo.ListBoards(ctx)
	if err != nil {
		t.Fatalf("ListBoards() error = %v", err)
	}
	if len(boards) != 2 || boards[0].ID != 42 {
		t.Fatalf("unexpected boards %#v", boards)
	}
}

func TestRepository_PlaceTasksAndColumnOrders(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)
	now := fixedNow()

	board, _ := repo.CreateBoard(ctx, domain.Board{Name: "B", CreatedAt: now, UpdatedAt: now})
	columns := make([]domain.Column, 0, 2)
	for idx, name := range []string{"Left", "Right"} {
		c, err := repo.CreateColumn(ctx, domain.Column{BoardID: board.ID, Name: name, Order: idx + 1, CreatedAt: now, UpdatedAt: now})
		if err != nil {
			t.Fatalf("CreateColumn() error = %v", err)
		}
		columns = append(columns, c)
	}
	taskIDs := []int64{}
	for idx := range 3 {
		task, err := repo.CreateTask(ctx, domain.Task{
			ColumnID:  columns[0].ID,
			Order:     idx + 1,
			Title:     fmt.Sprintf("t%d", idx),
			Priority:  domain.PriorityLow,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}
		taskIDs = append(taskIDs, task.ID)
	}

	err := repo.PlaceTasks(ctx, []app.TaskPlacement{
		{TaskID: taskIDs[1], ColumnID: columns[0].ID, Order: 2},
		{TaskID: taskIDs[2], ColumnID: columns[0].ID, Order: 1},
		{TaskID: taskIDs[0], ColumnID: columns[1].ID, Order: 1},
	})
	if err != nil {
		t.Fatalf("PlaceTasks() error = %v", err)
	}
	left, err := repo.ListTasks(ctx, columns[0].ID)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(left) != 2 || left[0].ID != taskIDs[2] || left[1].ID != taskIDs[1] {
		t.Fatalf("unexpected left column %#v", left)
	}
	boardTasks, err := repo.ListBoardTasks(ctx, board.ID)
	if err != nil || len(boardTasks) != 3 {
		t.Fatalf("ListBoardTasks() = %d, %v", len(boardTasks), err)
	}

	err = repo.PlaceTasks(ctx, []app.TaskPlacement{
		{TaskID: taskIDs[1], ColumnID: columns[1].ID, Order: 9},
		{TaskID: 999, ColumnID: columns[1].ID, Order: 1},
	})
	if !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	unchanged, _ := repo.GetTask(ctx, taskIDs[1])
	if unchanged.ColumnID != columns[0].ID || unchanged.Order != 2 {
		t.Fatalf("failed placement must roll back, got %#v", unchanged)
	}

	if err := repo.SetColumnOrders(ctx, []reorder.Assignment{{ID: columns[1].ID, Order: 1}, {ID: columns[0].ID, Order: 2}}); err != nil {
		t.Fatalf("SetColumnOrders() error = %v", err)
	}
	ordered, _ := repo.ListColumns(ctx, board.ID)
	if ordered[0].ID != columns[1].ID {
		t.Fatalf("unexpected column order %#v", ordered)
	}
}

func TestRepository_ChangeEvents(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)
	now := fixedNow()
	board, _ := repo.CreateBoard(ctx, domain.Board{Name: "B", CreatedAt: now, UpdatedAt: now})

	for idx, op := range []domain.ChangeOperation{domain.ChangeOperationCreate, domain.ChangeOperationMove, domain.ChangeOperationDelete} {
		err := repo.CreateChangeEvent(ctx, domain.ChangeEvent{
			BoardID:    board.ID,
			TaskID:     7,
			Operation:  op,
			Metadata:   map[string]string{"step": fmt.Sprint(idx)},
			OccurredAt: now.Add(time.Duration(idx) * time.Minute),
		})
		if err != nil {
			t.Fatalf("CreateChangeEvent() error = %v", err)
		}
	}
	events, err := repo.ListBoardChangeEvents(ctx, board.ID, 2)
	if err != nil {
		t.Fatalf("ListBoardChangeEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Operation != domain.ChangeOperationDelete || events[0].Metadata["step"] != "2" {
		t.Fatalf("unexpected newest event %#v", events[0])
	}
}

func TestRepository_Images(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)
	img := images.Image{ID: "abc", ContentType: "image/jpeg", Width: 3, Height: 2, Data: []byte{1, 2, 3}, CreatedAt: fixedNow()}
	if err := repo.SaveImage(ctx, img); err != nil {
		t.Fatalf("SaveImage() error = %v", err)
	}
	img.Data = []byte{4}
	if err := repo.SaveImage(ctx, img); err != nil {
		t.Fatalf("SaveImage() replace error = %v", err)
	}
	got, err := repo.GetImage(ctx, "abc")
	if err != nil {
		t.Fatalf("GetImage() error = %v", err)
	}
	if len(got.Data) != 1 || got.Width != 3 || !got.CreatedAt.Equal(fixedNow()) {
		t.Fatalf("unexpected image %#v", got)
	}
	if err := repo.SaveImage(ctx, images.Image{}); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestRepository_ServiceMovesAreContiguous(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)
	svc := app.NewService(repo, nil, fixedNow, app.ServiceConfig{})

	board, err := svc.EnsureDefaultBoard(ctx)
	if err != nil {
		t.Fatalf("EnsureDefaultBoard() error = %v", err)
	}
	todo, doing := board.Columns[0], board.Columns[1]
	ids := []int64{}
	for _, title := range []string{"a", "b", "c"} {
		task, err := svc.CreateTask(ctx, app.CreateTaskInput{ColumnID: todo.ID, Title: title})
		if err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}
		ids = append(ids, task.ID)
	}
	if err := svc.ApplyTaskMove(ctx, ids[0], todo.ID, doing.ID, 0); err != nil {
		t.Fatalf("ApplyTaskMove() error = %v", err)
	}
	if err := svc.ApplyColumnMove(ctx, todo.ID, board.Columns[2].ID); err != nil {
		t.Fatalf("ApplyColumnMove() error = %v", err)
	}

	got, err := svc.GetBoard(ctx, board.ID)
	if err != nil {
		t.Fatalf("GetBoard() error = %v", err)
	}
	if got.Columns[2].ID != todo.ID {
		t.Fatalf("expected moved column last, got %#v", got.Columns)
	}
	for _, column := range got.Columns {
		for idx, task := range column.Tasks {
			if task.Order != idx+1 {
				t.Fatalf("column %q task %q order %d", column.Name, task.Title, task.Order)
			}
		}
	}
	activity, err := svc.ListBoardActivity(ctx, board.ID, 10)
	if err != nil {
		t.Fatalf("ListBoardActivity() error = %v", err)
	}
	if len(activity) != 4 || activity[0].Operation != domain.ChangeOperationMove {
		t.Fatalf("unexpected activity %#v", activity)
	}
}
