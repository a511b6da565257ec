
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// The engine raises exactly these kinds. External collaborator failures are
// tagged ErrGeneration / ErrRender and propagated unchanged, never wrapped
// into anything else.
var (
	// ErrValidation indicates a malformed or inconsistent request.
	ErrValidation = errors.New("validation")
	// ErrInvalidState indicates an operation against the wrong lifecycle state.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict indicates a concurrent mutation on the same paper lineage.
	ErrConflict = errors.New("conflict")
	// ErrNotFound indicates the referenced paper or history entry does not exist.
	ErrNotFound = errors.New("not found")
	// ErrGeneration indicates a generation service failure.
	ErrGeneration = errors.New("generation")
	// ErrRender indicates a document renderer failure.
	ErrRender = errors.New("render")
)

// Validationf tags a formatted error as a validation failure.
func Validationf(format string, args ...any) error {
	return errors.Join(ErrValidation, fmt.Errorf(format, args...))
}

// InvalidStatef tags a formatted error as a lifecycle-state violation.
func InvalidStatef(format string, args ...any) error {
	return errors.Join(ErrInvalidState, fmt.Errorf(format, args...))
}

// Conflictf tags a formatted error as a concurrency conflict.
func Conflictf(format string, args ...any) error {
	return errors.Join(ErrConflict, fmt.Errorf(format, args...))
}

// NotFoundf tags a formatted error as a missing-entity failure.
func NotFoundf(format string, args ...any) error {
	return errors.Join(ErrNotFound, fmt.Errorf(format, args...))
}

// Generation tags an external generation failure without hiding the cause.
func Generation(err error) error {
	return errors.Join(ErrGeneration, err)
}

// Render tags an external renderer failure without hiding the cause.
func Render(err error) error {
	return errors.Join(ErrRender, err)
}

// HTTPStatus maps an engine error onto the HTTP status handlers respond with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrGeneration), errors.Is(err, ErrRender):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
