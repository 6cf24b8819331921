package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidOrder    = errors.New("invalid order")
	ErrInvalidColumnID = errors.New("invalid column id")
	ErrInvalidBoardID  = errors.New("invalid board id")
	ErrInvalidColor    = errors.New("invalid color")
)
