package cases

import (
	"errors"
	"net/http"
)

// Domain errors for case operations.
var (
	ErrNotFound    = errors.New("case not found")
	ErrDuplicate   = errors.New("case already exists")
	ErrInvalidCase = errors.New("invalid case")
	ErrInUse       = errors.New("case has recorded sessions")
)

// MapHTTPStatus maps case domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrInUse) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidCase) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
