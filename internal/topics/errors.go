package topics

import (
	"errors"
	"net/http"
)

// Domain errors for topic operations.
var (
	ErrNotFound     = errors.New("topic not found")
	ErrDuplicate    = errors.New("topic name already exists")
	ErrInvalidTopic = errors.New("topic requires a name, role, and query template")
)

// MapHTTPStatus maps topic domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidTopic) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
