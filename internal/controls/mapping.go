package controls

import (
	"database/sql"

	"github.com/governet/arbiter/internal/governance"
	"github.com/governet/arbiter/pkg/query"
	"github.com/governet/arbiter/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "controls", "c").
	Project("id", "ID").
	Project("description", "Description").
	Project("attribute", "Attribute").
	Project("match_value", "MatchValue").
	Project("required_tag", "RequiredTag").
	Project("hard", "Hard").
	Project("enabled", "Enabled")

var defaultSort = query.SortField{
	Field: "ID",
}

func scanControl(s repository.Scanner) (governance.Control, error) {
	var (
		c     governance.Control
		match sql.NullString
	)

	err := s.Scan(
		&c.ID,
		&c.Description,
		&c.Attribute,
		&match,
		&c.RequiredTag,
		&c.Hard,
		&c.Enabled,
	)
	if match.Valid {
		c.MatchValue = match.String
	}
	return c, err
}
