package app

import (
	"context"

	"github.com/evanschultz/cereboard/internal/domain"
	"github.com/evanschultz/cereboard/internal/images"
	"github.com/evanschultz/cereboard/internal/reorder"
)

// TaskPlacement is the column and order a task must carry after a move.
type TaskPlacement struct {
	TaskID   int64
	ColumnID int64
	Order    int
}

// Repository represents repository data used by this package. Create
// methods assign an id unless the entity already carries a positive one.
type Repository interface {
	CreateBoard(context.Context, domain.Board) (domain.Board, error)
	UpdateBoard(context.Context, domain.Board) error
	GetBoard(context.Context, int64) (domain.Board, error)
	ListBoards(context.Context) ([]domain.Board, error)
	DeleteBoard(context.Context, int64) error

	CreateColumn(context.Context, domain.Column) (domain.Column, error)
	UpdateColumn(context.Context, domain.Column) error
	GetColumn(context.Context, int64) (domain.Column, error)
	ListColumns(context.Context, int64) ([]domain.Column, error)
	DeleteColumn(context.Context, int64) error
	SetColumnOrders(context.Context, []reorder.Assignment) error

	CreateTask(context.Context, domain.Task) (domain.Task, error)
	UpdateTask(context.Context, domain.Task) error
	GetTask(context.Context, int64) (domain.Task, error)
	ListTasks(context.Context, int64) ([]domain.Task, error)
	ListBoardTasks(context.Context, int64) ([]domain.Task, error)
	ListAllTasks(context.Context) ([]domain.Task, error)
	DeleteTask(context.Context, int64) error
	PlaceTasks(context.Context, []TaskPlacement) error

	CreateChangeEvent(context.Context, domain.ChangeEvent) error
	ListBoardChangeEvents(context.Context, int64, int) ([]domain.ChangeEvent, error)

	SaveImage(context.Context, images.Image) error
	GetImage(context.Context, string) (images.Image, error)
}
