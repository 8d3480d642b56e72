package cases

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/governet/arbiter/pkg/query"
	"github.com/governet/arbiter/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "cases", "c").
	Project("id", "ID").
	Project("title", "Title").
	Project("context", "Context").
	Project("attributes", "Attributes").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for case queries. Nil fields
// are ignored. Title uses case-insensitive contains matching.
type Filters struct {
	Title *string `json:"title,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.WhereContains("Title", f.Title)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if t := values.Get("title"); t != "" {
		f.Title = &t
	}

	return f
}

func scanCase(s repository.Scanner) (Case, error) {
	var (
		c     Case
		attrs []byte
	)

	err := s.Scan(
		&c.ID,
		&c.Title,
		&c.Context,
		&attrs,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return c, err
	}

	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &c.Attributes); err != nil {
			return c, fmt.Errorf("decode case attributes: %w", err)
		}
	}
	return c, nil
}
