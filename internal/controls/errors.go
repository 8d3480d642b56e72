package controls

import (
	"errors"
	"net/http"
)

// Domain errors for control operations.
var (
	ErrNotFound       = errors.New("control not found")
	ErrDuplicate      = errors.New("control id already exists")
	ErrInvalidControl = errors.New("control requires a kebab-case id, attribute, and required tag")
)

// MapHTTPStatus maps control domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidControl) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
