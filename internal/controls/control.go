// Package controls implements persistence and HTTP management for the
// governance control table. Controls are stored as rows and loaded into the
// pure gate engine at session time, so policy changes never require a code
// change.
package controls

import (
	"regexp"

	"github.com/governet/arbiter/internal/governance"
)

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// CreateCommand carries the data needed to register a new control.
type CreateCommand struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Attribute   string `json:"attribute"`
	MatchValue  string `json:"match_value"`
	RequiredTag string `json:"required_tag"`
	Hard        bool   `json:"hard"`
}

// Validate checks the command for required fields and a well-formed id slug.
func (c CreateCommand) Validate() error {
	if !idPattern.MatchString(c.ID) {
		return ErrInvalidControl
	}
	if c.Attribute == "" || c.RequiredTag == "" {
		return ErrInvalidControl
	}
	return nil
}

// Control converts the command to a governance control. New controls start
// enabled.
func (c CreateCommand) Control() governance.Control {
	return governance.Control{
		ID:          c.ID,
		Description: c.Description,
		Attribute:   c.Attribute,
		MatchValue:  c.MatchValue,
		RequiredTag: c.RequiredTag,
		Hard:        c.Hard,
		Enabled:     true,
	}
}
