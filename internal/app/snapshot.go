package app

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/evanschultz/cereboard/internal/domain"
	"github.com/evanschultz/cereboard/internal/reorder"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "cereboard.snapshot.v1"

// Snapshot is a portable copy of every board.
type Snapshot struct {
	Version    string          `json:"version" yaml:"version"`
	ExportedAt time.Time       `json:"exportedAt" yaml:"exportedAt"`
	Boards     []SnapshotBoard `json:"boards" yaml:"boards"`
}

// SnapshotBoard represents snapshot board data used by this package.
type SnapshotBoard struct {
	ID          int64            `json:"id" yaml:"id"`
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description" yaml:"description"`
	CreatedAt   time.Time        `json:"createdAt" yaml:"createdAt"`
	Columns     []SnapshotColumn `json:"columns" yaml:"columns"`
}

// SnapshotColumn represents snapshot column data used by this package.
type SnapshotColumn struct {
	ID    int64          `json:"id" yaml:"id"`
	Name  string         `json:"name" yaml:"name"`
	Order int            `json:"order" yaml:"order"`
	Color string         `json:"color" yaml:"color"`
	Tasks []SnapshotTask `json:"tasks" yaml:"tasks"`
}

// SnapshotTask represents snapshot task data used by this package.
type SnapshotTask struct {
	ID          int64      `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Order       int        `json:"order" yaml:"order"`
	DueDate     *time.Time `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Priority    string     `json:"priority" yaml:"priority"`
}

// ExportSnapshot exports all boards with their columns and tasks.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	boards, err := s.ListBoards(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Boards:     make([]SnapshotBoard, 0, len(boards)),
	}
	for _, summary := range boards {
		board, err := s.GetBoard(ctx, summary.ID)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Boards = append(snap.Boards, snapshotBoardFromDomain(board))
	}
	return snap, nil
}

// Validate checks snapshot integrity before import.
func (s Snapshot) Validate() error {
	if strings.TrimSpace(s.Version) != SnapshotVersion {
		return fmt.Errorf("%w: unsupported version %q", ErrInvalidSnapshot, s.Version)
	}
	boardIDs := map[int64]struct{}{}
	columnIDs := map[int64]struct{}{}
	taskIDs := map[int64]struct{}{}
	for bi, board := range s.Boards {
		if board.ID <= 0 {
			return fmt.Errorf("%w: boards[%d].id must be positive", ErrInvalidSnapshot, bi)
		}
		if strings.TrimSpace(board.Name) == "" {
			return fmt.Errorf("%w: boards[%d].name is required", ErrInvalidSnapshot, bi)
		}
		if _, ok := boardIDs[board.ID]; ok {
			return fmt.Errorf("%w: duplicate board id %d", ErrInvalidSnapshot, board.ID)
		}
		boardIDs[board.ID] = struct{}{}
		for ci, column := range board.Columns {
			if column.ID <= 0 || strings.TrimSpace(column.Name) == "" {
				return fmt.Errorf("%w: boards[%d].columns[%d] needs a positive id and a name", ErrInvalidSnapshot, bi, ci)
			}
			if _, ok := columnIDs[column.ID]; ok {
				return fmt.Errorf("%w: duplicate column id %d", ErrInvalidSnapshot, column.ID)
			}
			columnIDs[column.ID] = struct{}{}
			for ti, task := range column.Tasks {
				if task.ID <= 0 || strings.TrimSpace(task.Title) == "" {
					return fmt.Errorf("%w: column %d tasks[%d] needs a positive id and a title", ErrInvalidSnapshot, column.ID, ti)
				}
				if _, ok := taskIDs[task.ID]; ok {
					return fmt.Errorf("%w: duplicate task id %d", ErrInvalidSnapshot, task.ID)
				}
				taskIDs[task.ID] = struct{}{}
			}
		}
	}
	return nil
}

// ImportSnapshot upserts every board, column and task by id, then
// normalizes orders to contiguous ranks.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	now := s.clock()
	for _, sb := range snap.Boards {
		board, err := domain.NewBoard(sb.Name, sb.Description, cmp.Or(sb.CreatedAt, now))
		if err != nil {
			return fmt.Errorf("board %d: %w", sb.ID, err)
		}
		board.ID = sb.ID
		if err := upsert(ctx, s.repo.GetBoard, s.repo.UpdateBoard, s.repo.CreateBoard, board.ID, board); err != nil {
			return fmt.Errorf("import board %d: %w", sb.ID, err)
		}

		columns := slices.Clone(sb.Columns)
		slices.SortStableFunc(columns, func(a, b SnapshotColumn) int { return a.Order - b.Order })
		for ci, sc := range columns {
			column, err := domain.NewColumn(board.ID, sc.Name, sc.Color, ci+1, now)
			if err != nil {
				return fmt.Errorf("column %d: %w", sc.ID, err)
			}
			column.ID = sc.ID
			if err := upsert(ctx, s.repo.GetColumn, s.repo.UpdateColumn, s.repo.CreateColumn, column.ID, column); err != nil {
				return fmt.Errorf("import column %d: %w", sc.ID, err)
			}

			tasks := slices.Clone(sc.Tasks)
			slices.SortStableFunc(tasks, func(a, b SnapshotTask) int { return a.Order - b.Order })
			for ti, st := range tasks {
				task, err := domain.NewTask(domain.TaskInput{
					ColumnID:    column.ID,
					Order:       ti + 1,
					Title:       st.Title,
					Description: st.Description,
					Priority:    domain.ParsePriority(st.Priority),
					DueDate:     st.DueDate,
				}, now)
				if err != nil {
					return fmt.Errorf("task %d: %w", st.ID, err)
				}
				task.ID = st.ID
				if err := upsert(ctx, s.repo.GetTask, s.repo.UpdateTask, s.repo.CreateTask, task.ID, task); err != nil {
					return fmt.Errorf("import task %d: %w", st.ID, err)
				}
			}
		}
		if err := s.normalizeBoardOrders(ctx, board.ID); err != nil {
			return err
		}
	}
	return nil
}

// normalizeBoardOrders reindexes the columns of a board and the tasks of
// each column.
func (s *Service) normalizeBoardOrders(ctx context.Context, boardID int64) error {
	columns, err := s.ListColumns(ctx, boardID)
	if err != nil {
		return err
	}
	before := columnItems(columns)
	if err := s.repo.SetColumnOrders(ctx, reorder.Changed(before, reorder.Reindex(before))); err != nil {
		return err
	}
	for _, column := range columns {
		tasks, err := s.orderedTasks(ctx, column.ID)
		if err != nil {
			return err
		}
		items := taskItems(tasks)
		if err := s.repo.PlaceTasks(ctx, placements(column.ID, reorder.Changed(items, reorder.Reindex(items)))); err != nil {
			return err
		}
	}
	return nil
}

func upsert[T any](
	ctx context.Context,
	get func(context.Context, int64) (T, error),
	update func(context.Context, T) error,
	create func(context.Context, T) (T, error),
	id int64,
	value T,
) error {
	_, err := get(ctx, id)
	switch {
	case err == nil:
		return update(ctx, value)
	case errors.Is(err, ErrNotFound):
		_, err = create(ctx, value)
		return err
	default:
		return err
	}
}

func snapshotBoardFromDomain(b domain.Board) SnapshotBoard {
	out := SnapshotBoard{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		CreatedAt:   b.CreatedAt.UTC(),
		Columns:     make([]SnapshotColumn, 0, len(b.Columns)),
	}
	for _, c := range b.Columns {
		sc := SnapshotColumn{
			ID:    c.ID,
			Name:  c.Name,
			Order: c.Order,
			Color: c.Color,
			Tasks: make([]SnapshotTask, 0, len(c.Tasks)),
		}
		for _, t := range c.Tasks {
			sc.Tasks = append(sc.Tasks, SnapshotTask{
				ID:          t.ID,
				Title:       t.Title,
				Description: t.Description,
				Order:       t.Order,
				DueDate:     copyTimePtr(t.DueDate),
				Priority:    string(t.Priority),
			})
		}
		out.Columns = append(out.Columns, sc)
	}
	return out
}

func copyTimePtr(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	ts := in.UTC()
	return &ts
}
