package governance_test

import (
	"testing"

	"github.com/governet/arbiter/internal/governance"
)

func TestControlTriggered(t *testing.T) {
	tests := []struct {
		name    string
		control governance.Control
		attrs   map[string]any
		want    bool
	}{
		{
			name:    "truthy bool fires",
			control: governance.Control{Attribute: "sensors.alpr"},
			attrs:   map[string]any{"sensors": map[string]any{"alpr": true}},
			want:    true,
		},
		{
			name:    "false bool does not fire",
			control: governance.Control{Attribute: "sensors.alpr"},
			attrs:   map[string]any{"sensors": map[string]any{"alpr": false}},
			want:    false,
		},
		{
			name:    "absent attribute does not fire",
			control: governance.Control{Attribute: "sensors.alpr"},
			attrs:   map[string]any{"sensors": map[string]any{}},
			want:    false,
		},
		{
			name:    "path through non-map does not fire",
			control: governance.Control{Attribute: "sensors.alpr.mode"},
			attrs:   map[string]any{"sensors": map[string]any{"alpr": true}},
			want:    false,
		},
		{
			name:    "substring match is case-insensitive",
			control: governance.Control{Attribute: "location", MatchValue: "florida"},
			attrs:   map[string]any{"location": "St. Petersburg, FLORIDA"},
			want:    true,
		},
		{
			name:    "substring match rejects other values",
			control: governance.Control{Attribute: "location", MatchValue: "florida"},
			attrs:   map[string]any{"location": "Austin, Texas"},
			want:    false,
		},
		{
			name:    "match value against non-string does not fire",
			control: governance.Control{Attribute: "location", MatchValue: "florida"},
			attrs:   map[string]any{"location": 33701},
			want:    false,
		},
		{
			name:    "non-empty list is truthy",
			control: governance.Control{Attribute: "sensors.audio"},
			attrs:   map[string]any{"sensors": map[string]any{"audio": []any{"mic-1"}}},
			want:    true,
		},
		{
			name:    "empty string is falsy",
			control: governance.Control{Attribute: "vendor"},
			attrs:   map[string]any{"vendor": ""},
			want:    false,
		},
		{
			name:    "nonzero number is truthy",
			control: governance.Control{Attribute: "cameras"},
			attrs:   map[string]any{"cameras": float64(12)},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.control.Triggered(tt.attrs); got != tt.want {
				t.Errorf("Triggered() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasRequirementTag(t *testing.T) {
	tests := []struct {
		name    string
		finding governance.Finding
		tag     string
		want    bool
	}{
		{
			name: "exact tag match",
			finding: governance.Finding{Requirements: []governance.Requirement{
				{Description: "Adopt a program", MustHave: true, Tag: "cjis-compliance"},
			}},
			tag:  "cjis-compliance",
			want: true,
		},
		{
			name: "tag match is case-insensitive",
			finding: governance.Finding{Requirements: []governance.Requirement{
				{Description: "Adopt a program", MustHave: true, Tag: "CJIS-Compliance"},
			}},
			tag:  "cjis-compliance",
			want: true,
		},
		{
			name: "untagged requirement matched by description",
			finding: governance.Finding{Requirements: []governance.Requirement{
				{Description: "Establish notice and retention policy for recordings", MustHave: true},
			}},
			tag:  "notice-and-retention",
			want: true,
		},
		{
			name: "optional requirement never satisfies a control",
			finding: governance.Finding{Requirements: []governance.Requirement{
				{Description: "Adopt a program", MustHave: false, Tag: "cjis-compliance"},
			}},
			tag:  "cjis-compliance",
			want: false,
		},
		{
			name:    "no requirements",
			finding: governance.Finding{},
			tag:     "cjis-compliance",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.finding.HasRequirementTag(tt.tag); got != tt.want {
				t.Errorf("HasRequirementTag(%q) = %v, want %v", tt.tag, got, tt.want)
			}
		})
	}
}

func TestActiveControls(t *testing.T) {
	table := []governance.Control{
		{ID: "a", Enabled: true},
		{ID: "b", Enabled: false},
		{ID: "c", Enabled: true},
	}

	active := governance.ActiveControls(table)
	if len(active) != 2 {
		t.Fatalf("len = %d, want 2", len(active))
	}
	if active[0].ID != "a" || active[1].ID != "c" {
		t.Errorf("active = %v", active)
	}
}
