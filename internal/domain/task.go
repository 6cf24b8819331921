package domain

import (
	"slices"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority maps a stored or user-supplied value onto the priority set.
// Unknown values fall back to PriorityLow.
func ParsePriority(raw string) Priority {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if slices.Contains(validPriorities, p) {
		return p
	}
	return PriorityLow
}

// Priorities returns the priority set in ascending order.
func Priorities() []Priority {
	return slices.Clone(validPriorities)
}

// Next cycles through the priority set.
func (p Priority) Next() Priority {
	idx := slices.Index(validPriorities, p)
	return validPriorities[(idx+1)%len(validPriorities)]
}

type Task struct {
	ID          int64
	ColumnID    int64
	Order       int
	Title       string
	Description string
	Priority    Priority
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TaskInput struct {
	ColumnID    int64
	Order       int
	Title       string
	Description string
	Priority    Priority
	DueDate     *time.Time
}

// TaskSummary is the ordered view of a task returned to the drag controller.
type TaskSummary struct {
	ID    int64
	Order int
}

// MoveRequest places a task at a 1-based order within a column.
type MoveRequest struct {
	ColumnID int64
	Order    int
}

func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.ColumnID <= 0 {
		return Task{}, ErrInvalidColumnID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	if in.Order < 1 {
		return Task{}, ErrInvalidOrder
	}
	if in.Priority == "" {
		in.Priority = PriorityLow
	}
	if !slices.Contains(validPriorities, in.Priority) {
		return Task{}, ErrInvalidPriority
	}

	return Task{
		ColumnID:    in.ColumnID,
		Order:       in.Order,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		DueDate:     normalizeDueDate(in.DueDate),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

func (t *Task) Move(columnID int64, order int, now time.Time) error {
	if columnID <= 0 {
		return ErrInvalidColumnID
	}
	if order < 1 {
		return ErrInvalidOrder
	}
	t.ColumnID = columnID
	t.Order = order
	t.UpdatedAt = now.UTC()
	return nil
}

// UpdateDetails replaces the editable fields. Descriptions keep their
// whitespace since list indentation is significant.
func (t *Task) UpdateDetails(title, description string, priority Priority, dueDate *time.Time, now time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidTitle
	}
	if !slices.Contains(validPriorities, priority) {
		return ErrInvalidPriority
	}
	t.Title = title
	t.Description = description
	t.Priority = priority
	t.DueDate = normalizeDueDate(dueDate)
	t.UpdatedAt = now.UTC()
	return nil
}

// Overdue reports whether the due date lies before now.
func (t Task) Overdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now.UTC())
}

func normalizeDueDate(dueDate *time.Time) *time.Time {
	if dueDate == nil {
		return nil
	}
	ts := dueDate.UTC().Truncate(time.Second)
	return &ts
}
