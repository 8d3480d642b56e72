// Package cases implements the deployment-case domain for Arbiter.
// A case is the unit of review: the free-form deployment context plus a
// structured attribute map describing the capabilities under consideration.
package cases

import (
	"time"

	"github.com/google/uuid"
)

// Case represents a registered deployment case. Attributes is a nested JSON
// map of capability flags and descriptors (e.g. "sensors.alpr", "location",
// "storage") that governance controls inspect via dotted paths. Cases are
// immutable once a session has run against them.
type Case struct {
	ID         uuid.UUID      `json:"id"`
	Title      string         `json:"title"`
	Context    string         `json:"context"`
	Attributes map[string]any `json:"attributes"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// CreateCommand carries the data needed to register a new case.
type CreateCommand struct {
	Title      string         `json:"title"`
	Context    string         `json:"context"`
	Attributes map[string]any `json:"attributes"`
}

// Validate checks the command for the fields a case cannot exist without.
func (c CreateCommand) Validate() error {
	if c.Title == "" || c.Context == "" {
		return ErrInvalidCase
	}
	return nil
}
