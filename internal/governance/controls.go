package governance

import (
	"strings"
)

// Control is one registered governance rule: when its trigger fires over a
// case's attributes, a must-have requirement carrying RequiredTag must be
// present in the finding. Controls are data, not code — new policy domains
// are added by registering tuples, never by branching.
type Control struct {
	ID          string `json:"id"`
	Description string `json:"description"`

	// Attribute is the case attribute the trigger inspects, using dotted
	// paths for nested values (e.g. "sensors.alpr").
	Attribute string `json:"attribute"`

	// MatchValue, when set, fires the trigger if the attribute's string
	// value contains it (case-insensitive). When empty, the trigger fires
	// on any truthy attribute value.
	MatchValue string `json:"match_value,omitempty"`

	RequiredTag string `json:"required_tag"`

	// Hard controls HOLD the session when unsatisfied; soft controls
	// degrade it to MITIGATE.
	Hard bool `json:"hard"`

	Enabled bool `json:"enabled"`
}

// Triggered evaluates the control's trigger predicate over case attributes.
func (c Control) Triggered(attrs map[string]any) bool {
	value, ok := lookupAttribute(attrs, c.Attribute)
	if !ok {
		return false
	}

	if c.MatchValue != "" {
		s, ok := value.(string)
		return ok && strings.Contains(strings.ToLower(s), strings.ToLower(c.MatchValue))
	}

	return truthy(value)
}

// ActiveControls filters a control table down to enabled entries.
func ActiveControls(table []Control) []Control {
	active := make([]Control, 0, len(table))
	for _, c := range table {
		if c.Enabled {
			active = append(active, c)
		}
	}
	return active
}

func lookupAttribute(attrs map[string]any, path string) (any, bool) {
	current := any(attrs)
	for part := range strings.SplitSeq(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case int:
		return v != 0
	case []any:
		return len(v) > 0
	default:
		return value != nil
	}
}

func matchesTag(r Requirement, tag string) bool {
	if strings.EqualFold(r.Tag, tag) {
		return true
	}
	needle := strings.ToLower(strings.ReplaceAll(tag, "-", " "))
	return strings.Contains(strings.ToLower(r.Description), needle)
}
