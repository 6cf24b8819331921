package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/evanschultz/cereboard/internal/domain"
	"github.com/evanschultz/cereboard/internal/reorder"
)

// ApplyTaskMove moves a task from sourceColumnID to targetColumnID at
// insertionIndex, counted among the target's tasks without the moved one.
// Both columns are reindexed to contiguous orders starting at 1.
func (s *Service) ApplyTaskMove(ctx context.Context, taskID, sourceColumnID, targetColumnID int64, insertionIndex int) error {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("task %d: %w", taskID, err)
	}
	if task.ColumnID != sourceColumnID {
		return fmt.Errorf("task %d in column %d: %w", taskID, sourceColumnID, ErrNotFound)
	}
	source, err := s.repo.GetColumn(ctx, sourceColumnID)
	if err != nil {
		return fmt.Errorf("source column %d: %w", sourceColumnID, err)
	}
	target, err := s.repo.GetColumn(ctx, targetColumnID)
	if err != nil {
		return fmt.Errorf("target column %d: %w", targetColumnID, err)
	}
	if source.BoardID != target.BoardID {
		return fmt.Errorf("%w: columns %d and %d belong to different boards", ErrInvalidMove, sourceColumnID, targetColumnID)
	}

	sourceTasks, err := s.orderedTasks(ctx, sourceColumnID)
	if err != nil {
		return err
	}
	srcBefore := taskItems(sourceTasks)

	var out []TaskPlacement
	if sourceColumnID == targetColumnID {
		after, err := reorder.Move(srcBefore, taskID, insertionIndex)
		if err != nil {
			return fmt.Errorf("task %d: %w", taskID, ErrNotFound)
		}
		out = placements(sourceColumnID, reorder.Changed(srcBefore, after))
	} else {
		targetTasks, err := s.orderedTasks(ctx, targetColumnID)
		if err != nil {
			return err
		}
		dstBefore := taskItems(targetTasks)
		srcAfter, dstAfter, err := reorder.MoveAcross(srcBefore, dstBefore, taskID, insertionIndex)
		if err != nil {
			return fmt.Errorf("task %d: %w", taskID, ErrNotFound)
		}
		out = placements(sourceColumnID, reorder.Changed(srcBefore, srcAfter))
		out = append(out, placements(targetColumnID, reorder.Changed(dstBefore, dstAfter))...)
	}
	if len(out) == 0 {
		return nil
	}
	if err := s.repo.PlaceTasks(ctx, out); err != nil {
		return err
	}

	order := 0
	for _, p := range out {
		if p.TaskID == taskID {
			order = p.Order
		}
	}
	s.recordChange(ctx, source.BoardID, taskID, domain.ChangeOperationMove, map[string]string{
		"from_column_id": strconv.FormatInt(sourceColumnID, 10),
		"to_column_id":   strconv.FormatInt(targetColumnID, 10),
		"order":          strconv.Itoa(order),
	})
	return nil
}

// ApplyColumnMove moves a column into the position currently held by
// targetColumnID and reindexes the board's columns.
func (s *Service) ApplyColumnMove(ctx context.Context, columnID, targetColumnID int64) error {
	column, err := s.repo.GetColumn(ctx, columnID)
	if err != nil {
		return fmt.Errorf("column %d: %w", columnID, err)
	}
	target, err := s.repo.GetColumn(ctx, targetColumnID)
	if err != nil {
		return fmt.Errorf("target column %d: %w", targetColumnID, err)
	}
	if column.BoardID != target.BoardID {
		return fmt.Errorf("%w: columns %d and %d belong to different boards", ErrInvalidMove, columnID, targetColumnID)
	}
	if columnID == targetColumnID {
		return nil
	}
	columns, err := s.ListColumns(ctx, column.BoardID)
	if err != nil {
		return err
	}
	before := columnItems(columns)
	index := slices.IndexFunc(before, func(item reorder.Item) bool { return item.ID == targetColumnID })
	after, err := reorder.Move(before, columnID, index)
	if err != nil {
		return fmt.Errorf("column %d: %w", columnID, ErrNotFound)
	}
	return s.repo.SetColumnOrders(ctx, reorder.Changed(before, after))
}

// GetColumnTasksOrdered returns the task ids and orders of a column top to bottom.
func (s *Service) GetColumnTasksOrdered(ctx context.Context, columnID int64) ([]domain.TaskSummary, error) {
	tasks, err := s.ListColumnTasks(ctx, columnID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TaskSummary, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, domain.TaskSummary{ID: t.ID, Order: t.Order})
	}
	return out, nil
}

// MoveTask places a task at a 1-based order in a column.
func (s *Service) MoveTask(ctx context.Context, taskID int64, req domain.MoveRequest) (domain.Task, error) {
	if req.Order < 1 {
		return domain.Task{}, domain.ErrInvalidOrder
	}
	if req.ColumnID <= 0 {
		return domain.Task{}, domain.ErrInvalidColumnID
	}
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	if err := s.ApplyTaskMove(ctx, taskID, task.ColumnID, req.ColumnID, req.Order-1); err != nil {
		return domain.Task{}, err
	}
	return s.repo.GetTask(ctx, taskID)
}

// ShiftTask moves a task up (negative delta) or down within its column.
func (s *Service) ShiftTask(ctx context.Context, taskID int64, delta int) error {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	siblings, err := s.orderedTasks(ctx, task.ColumnID)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(siblings, func(t domain.Task) bool { return t.ID == taskID })
	next := idx + delta
	if idx < 0 || next < 0 || next >= len(siblings) {
		return nil
	}
	return s.ApplyTaskMove(ctx, taskID, task.ColumnID, task.ColumnID, next)
}

// MoveTaskToAdjacentColumn appends a task to the column left (negative
// delta) or right of its own. It reports the target column id.
func (s *Service) MoveTaskToAdjacentColumn(ctx context.Context, taskID int64, delta int) (int64, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return 0, err
	}
	target, err := s.adjacentColumn(ctx, task.ColumnID, delta)
	if err != nil || target == 0 {
		return 0, err
	}
	siblings, err := s.orderedTasks(ctx, target)
	if err != nil {
		return 0, err
	}
	if err := s.ApplyTaskMove(ctx, taskID, task.ColumnID, target, len(siblings)); err != nil {
		return 0, err
	}
	return target, nil
}

// ShiftColumn swaps a column with its left (negative delta) or right neighbor.
func (s *Service) ShiftColumn(ctx context.Context, columnID int64, delta int) error {
	target, err := s.adjacentColumn(ctx, columnID, delta)
	if err != nil || target == 0 {
		return err
	}
	return s.ApplyColumnMove(ctx, columnID, target)
}

func (s *Service) adjacentColumn(ctx context.Context, columnID int64, delta int) (int64, error) {
	column, err := s.repo.GetColumn(ctx, columnID)
	if err != nil {
		return 0, err
	}
	columns, err := s.ListColumns(ctx, column.BoardID)
	if err != nil {
		return 0, err
	}
	idx := slices.IndexFunc(columns, func(c domain.Column) bool { return c.ID == columnID })
	next := idx + delta
	if idx < 0 || next < 0 || next >= len(columns) {
		return 0, nil
	}
	return columns[next].ID, nil
}

// IsNotFound reports whether err signals a missing board entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
