package domain

import (
	"regexp"
	"strings"
	"time"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Column is an ordered container of tasks within a board.
type Column struct {
	ID        int64
	BoardID   int64
	Name      string
	Order     int
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Tasks     []Task
}

// NewColumn constructs a column that has not been persisted yet.
func NewColumn(boardID int64, name, color string, order int, now time.Time) (Column, error) {
	name = strings.TrimSpace(name)
	if boardID <= 0 {
		return Column{}, ErrInvalidBoardID
	}
	if name == "" {
		return Column{}, ErrInvalidName
	}
	if order < 1 {
		return Column{}, ErrInvalidOrder
	}
	color, err := normalizeColor(color)
	if err != nil {
		return Column{}, err
	}
	return Column{
		BoardID:   boardID,
		Name:      name,
		Order:     order,
		Color:     color,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// Rename renames the column.
func (c *Column) Rename(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	c.Name = name
	c.UpdatedAt = now.UTC()
	return nil
}

// SetColor replaces the accent color. An empty value clears it.
func (c *Column) SetColor(color string, now time.Time) error {
	color, err := normalizeColor(color)
	if err != nil {
		return err
	}
	c.Color = color
	c.UpdatedAt = now.UTC()
	return nil
}

// SetOrder handles set order.
func (c *Column) SetOrder(order int, now time.Time) error {
	if order < 1 {
		return ErrInvalidOrder
	}
	c.Order = order
	c.UpdatedAt = now.UTC()
	return nil
}

func normalizeColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return "", nil
	}
	if !hexColorPattern.MatchString(color) {
		return "", ErrInvalidColor
	}
	return strings.ToLower(color), nil
}
