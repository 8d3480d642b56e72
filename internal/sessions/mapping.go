package sessions

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/governet/arbiter/internal/governance"
	"github.com/governet/arbiter/pkg/query"
	"github.com/governet/arbiter/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "sessions", "s").
	Project("id", "ID").
	Project("case_id", "CaseID").
	Project("status", "Status").
	Project("failure_kind", "FailureKind").
	Project("decision", "Decision").
	Project("started_at", "StartedAt").
	Project("completed_at", "CompletedAt")

var defaultSort = query.SortField{
	Field:      "StartedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for session queries. Nil
// fields are ignored; both use exact matching.
type Filters struct {
	CaseID *uuid.UUID `json:"case_id,omitempty"`
	Status *Status    `json:"status,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("CaseID", f.CaseID).
		WhereEquals("Status", f.Status)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("case_id"); c != "" {
		if id, err := uuid.Parse(c); err == nil {
			f.CaseID = &id
		}
	}

	if s := values.Get("status"); s != "" {
		status := Status(s)
		f.Status = &status
	}

	return f
}

func scanSession(s repository.Scanner) (Session, error) {
	var (
		session  Session
		failure  sql.NullString
		decision []byte
	)

	err := s.Scan(
		&session.ID,
		&session.CaseID,
		&session.Status,
		&failure,
		&decision,
		&session.StartedAt,
		&session.CompletedAt,
	)
	if err != nil {
		return session, err
	}

	if failure.Valid {
		kind := FailureKind(failure.String)
		session.FailureKind = &kind
	}

	if len(decision) > 0 {
		var d governance.Decision
		if err := json.Unmarshal(decision, &d); err != nil {
			return session, fmt.Errorf("decode session decision: %w", err)
		}
		session.Decision = &d
	}

	return session, nil
}
