package app

import (
	"errors"

	"github.com/evanschultz/cereboard/internal/domain"
)

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound        = domain.ErrNotFound
	ErrInvalidMove     = errors.New("invalid move")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
