package common

import (
	"errors"

	"github.com/evanschultz/cereboard/internal/app"
	"github.com/evanschultz/cereboard/internal/domain"
)

// Error codes shared by the HTTP envelope and MCP tool errors.
const (
	CodeNotFound       = "not_found"
	CodeInvalidRequest = "invalid_request"
	CodeInvalidMove    = "invalid_move"
	CodeInternal       = "internal_error"
)

var invalidInputErrors = []error{
	ErrInvalidRequest,
	domain.ErrInvalidID,
	domain.ErrInvalidName,
	domain.ErrInvalidTitle,
	domain.ErrInvalidPriority,
	domain.ErrInvalidOrder,
	domain.ErrInvalidColumnID,
	domain.ErrInvalidBoardID,
	domain.ErrInvalidColor,
}

// ErrorCode classifies a service error into a transport error code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return CodeInternal
	case errors.Is(err, app.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, app.ErrInvalidMove):
		return CodeInvalidMove
	}
	for _, target := range invalidInputErrors {
		if errors.Is(err, target) {
			return CodeInvalidRequest
		}
	}
	return CodeInternal
}
