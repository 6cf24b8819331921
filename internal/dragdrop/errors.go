package dragdrop

import "errors"

var (
	// ErrInvalidState reports an operation that conflicts with the session state.
	ErrInvalidState = errors.New("invalid drag state")
	// ErrMalformedID reports a non-positive identifier on a drag event.
	ErrMalformedID = errors.New("malformed id")
	// ErrTargetNotFound reports that the board data no longer knows the dropped entity.
	ErrTargetNotFound = errors.New("drop target not found")
)
