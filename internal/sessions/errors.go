package sessions

import (
	"errors"
	"net/http"

	"github.com/governet/arbiter/internal/cases"
)

// Domain errors for session operations.
var (
	ErrNotFound   = errors.New("session not found")
	ErrDuplicate  = errors.New("session already exists")
	ErrRunFailed  = errors.New("session run failed")
	ErrNoDecision = errors.New("session has no recorded decision")
)

// MapHTTPStatus maps session domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, cases.ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrNoDecision) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrRunFailed) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
