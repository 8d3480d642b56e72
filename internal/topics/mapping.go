package topics

import (
	"net/url"
	"strconv"

	"github.com/governet/arbiter/pkg/query"
	"github.com/governet/arbiter/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "topics", "t").
	Project("id", "ID").
	Project("name", "Name").
	Project("role", "Role").
	Project("query_template", "QueryTemplate").
	Project("description", "Description").
	Project("active", "Active")

var defaultSort = query.SortField{
	Field: "Name",
}

// Filters contains optional filtering criteria for topic queries. Nil fields
// are ignored. Active uses exact matching; Name uses case-insensitive
// contains matching.
type Filters struct {
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Name", f.Name).
		WhereEquals("Active", f.Active)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	if a := values.Get("active"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			f.Active = &v
		}
	}

	return f
}

func scanTopic(s repository.Scanner) (Topic, error) {
	var t Topic
	err := s.Scan(
		&t.ID,
		&t.Name,
		&t.Role,
		&t.QueryTemplate,
		&t.Description,
		&t.Active,
	)
	return t, err
}
