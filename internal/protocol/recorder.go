package protocol

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// Recorder appends and retrieves protocol events. Append is the only write
// path in the package; there is no update or delete.
type Recorder interface {
	Append(ctx context.Context, e Entry) (*ProtocolEvent, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]ProtocolEvent, error)
}

// Domain errors for protocol operations.
var (
	ErrNotFound        = errors.New("no protocol events for session")
	ErrAppendExhausted = errors.New("protocol append retries exhausted")
)

// MapHTTPStatus maps protocol domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
