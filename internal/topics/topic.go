// Package topics implements the evaluator topic registry for Arbiter.
// Each topic defines one specialist review perspective: the role
// instructions handed to the reasoning collaborator and the template used
// to build its evidence query. Sessions evaluate every active topic.
package topics

import (
	"strings"

	"github.com/google/uuid"
)

// Placeholder substituted with the case context when rendering a topic's
// evidence query.
const contextPlaceholder = "{context}"

// Topic represents one registered review perspective.
type Topic struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	QueryTemplate string    `json:"query_template"`
	Description   *string   `json:"description"`
	Active        bool      `json:"active"`
}

// EvidenceQuery renders the topic's retrieval query for a case context.
// Templates reference the context via "{context}"; templates without the
// placeholder get the context appended.
func (t Topic) EvidenceQuery(caseContext string) string {
	if strings.Contains(t.QueryTemplate, contextPlaceholder) {
		return strings.ReplaceAll(t.QueryTemplate, contextPlaceholder, caseContext)
	}
	return strings.TrimSpace(t.QueryTemplate + " " + caseContext)
}

// CreateCommand carries the data needed to register a new topic.
type CreateCommand struct {
	Name          string  `json:"name"`
	Role          string  `json:"role"`
	QueryTemplate string  `json:"query_template"`
	Description   *string `json:"description"`
}

// Validate checks the command for required fields.
func (c CreateCommand) Validate() error {
	if c.Name == "" || c.Role == "" || c.QueryTemplate == "" {
		return ErrInvalidTopic
	}
	return nil
}

// UpdateCommand carries the data needed to update an existing topic.
type UpdateCommand struct {
	Name          string  `json:"name"`
	Role          string  `json:"role"`
	QueryTemplate string  `json:"query_template"`
	Description   *string `json:"description"`
}
