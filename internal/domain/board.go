package domain

import (
	"strings"
	"time"
)

// Board is the top-level container of ordered columns.
type Board struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Columns     []Column
}

// NewBoard constructs a board that has not been persisted yet.
func NewBoard(name, description string, now time.Time) (Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Board{}, ErrInvalidName
	}
	return Board{
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

// Update renames the board and replaces its description.
func (b *Board) Update(name, description string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	b.Name = name
	b.Description = strings.TrimSpace(description)
	b.UpdatedAt = now.UTC()
	return nil
}

// Column returns the column with the given id.
func (b Board) Column(id int64) (Column, bool) {
	for _, column := range b.Columns {
		if column.ID == id {
			return column, true
		}
	}
	return Column{}, false
}

// TaskCount returns the number of tasks across all columns.
func (b Board) TaskCount() int {
	total := 0
	for _, column := range b.Columns {
		total += len(column.Tasks)
	}
	return total
}
