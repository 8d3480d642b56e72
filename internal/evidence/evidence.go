// Package evidence implements the client side of the retrieval gateway:
// the interface sessions query for supporting documents, a production HTTP
// client, and a deterministic stub for tests and local runs. The gateway's
// internals (indexing, ranking, corpus management) live elsewhere; this
// package only consumes its query endpoint.
package evidence

import (
	"context"
	"errors"
	"net/http"

	"github.com/governet/arbiter/internal/governance"
)

// Gateway retrieves supporting evidence for a query. An empty result set is
// a valid answer — the quality gate handles thin evidence downstream — but a
// transport or protocol failure is an error.
type Gateway interface {
	Query(ctx context.Context, text string, topK int) ([]governance.Evidence, error)
}

// Domain errors for gateway operations.
var (
	ErrUnavailable = errors.New("evidence gateway unavailable")
	ErrBadResponse = errors.New("evidence gateway returned a malformed response")
	ErrEmptyQuery  = errors.New("evidence query text is empty")
)

// MapHTTPStatus maps gateway domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrBadResponse) {
		return http.StatusBadGateway
	}
	if errors.Is(err, ErrEmptyQuery) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
