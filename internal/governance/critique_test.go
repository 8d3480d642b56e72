package governance_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/governet/arbiter/internal/governance"
)

func evidenceItems(n int) []governance.Evidence {
	items := make([]governance.Evidence, n)
	for i := range items {
		items[i] = governance.Evidence{
			Title:   fmt.Sprintf("doc-%d", i),
			URI:     fmt.Sprintf("corpus://doc-%d", i),
			Snippet: "relevant excerpt",
			Source:  "corpus",
		}
	}
	return items
}

func TestReview(t *testing.T) {
	cfg := governance.DefaultGateConfig()

	alprControl := governance.Control{
		ID:          "cjis-alpr",
		Attribute:   "sensors.alpr",
		RequiredTag: "cjis-compliance",
		Hard:        true,
		Enabled:     true,
	}

	tests := []struct {
		name        string
		finding     governance.Finding
		attrs       map[string]any
		table       []governance.Control
		wantStatus  governance.CritiqueStatus
		wantMissing []string
	}{
		{
			name: "sufficient evidence and confidence passes",
			finding: governance.Finding{
				Topic:      "privacy",
				Evidence:   evidenceItems(3),
				Confidence: 0.8,
			},
			wantStatus:  governance.CritiqueOK,
			wantMissing: []string{},
		},
		{
			name: "insufficient evidence forces revision",
			finding: governance.Finding{
				Topic:      "privacy",
				Evidence:   evidenceItems(2),
				Confidence: 0.9,
			},
			wantStatus:  governance.CritiqueRevise,
			wantMissing: []string{governance.MissingInsufficientEvidence},
		},
		{
			name: "triggered control without requirement forces revision",
			finding: governance.Finding{
				Topic:      "public-safety",
				Evidence:   evidenceItems(4),
				Confidence: 0.9,
			},
			attrs:       map[string]any{"sensors": map[string]any{"alpr": true}},
			table:       []governance.Control{alprControl},
			wantStatus:  governance.CritiqueRevise,
			wantMissing: []string{"cjis-compliance"},
		},
		{
			name: "triggered control covered by tagged requirement passes",
			finding: governance.Finding{
				Topic:    "public-safety",
				Evidence: evidenceItems(4),
				Requirements: []governance.Requirement{
					{Description: "Adopt a CJIS compliance program", MustHave: true, Tag: "cjis-compliance"},
				},
				Confidence: 0.9,
			},
			attrs:       map[string]any{"sensors": map[string]any{"alpr": true}},
			table:       []governance.Control{alprControl},
			wantStatus:  governance.CritiqueOK,
			wantMissing: []string{},
		},
		{
			name: "disabled control never triggers",
			finding: governance.Finding{
				Topic:      "public-safety",
				Evidence:   evidenceItems(3),
				Confidence: 0.9,
			},
			attrs: map[string]any{"sensors": map[string]any{"alpr": true}},
			table: []governance.Control{{
				ID:          "cjis-alpr",
				Attribute:   "sensors.alpr",
				RequiredTag: "cjis-compliance",
				Hard:        true,
				Enabled:     false,
			}},
			wantStatus:  governance.CritiqueOK,
			wantMissing: []string{},
		},
		{
			name: "low confidence forces revision",
			finding: governance.Finding{
				Topic:      "connectivity",
				Evidence:   evidenceItems(3),
				Confidence: 0.39,
			},
			wantStatus:  governance.CritiqueRevise,
			wantMissing: []string{governance.MissingLowConfidence},
		},
		{
			name: "evidence rule reported before confidence rule",
			finding: governance.Finding{
				Topic:      "connectivity",
				Evidence:   evidenceItems(1),
				Confidence: 0.1,
			},
			wantStatus:  governance.CritiqueRevise,
			wantMissing: []string{governance.MissingInsufficientEvidence},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := governance.Review(tt.finding, tt.attrs, tt.table, cfg)
			if got.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", got.Status, tt.wantStatus)
			}
			if len(got.Missing) != len(tt.wantMissing) {
				t.Fatalf("missing = %v, want %v", got.Missing, tt.wantMissing)
			}
			for i, m := range tt.wantMissing {
				if got.Missing[i] != m {
					t.Errorf("missing[%d] = %q, want %q", i, got.Missing[i], m)
				}
			}
		})
	}
}

func TestReviewEvidenceFloorExhaustive(t *testing.T) {
	cfg := governance.DefaultGateConfig()
	rng := rand.New(rand.NewSource(42))

	for range 50 {
		n := rng.Intn(cfg.MinEvidence)
		f := governance.Finding{
			Topic:      "sustainability",
			Evidence:   evidenceItems(n),
			Confidence: rng.Float64(),
		}

		got := governance.Review(f, nil, nil, cfg)
		if got.Status != governance.CritiqueRevise {
			t.Fatalf("finding with %d evidence items: status = %q, want %q",
				n, got.Status, governance.CritiqueRevise)
		}
		if len(got.Missing) == 0 || got.Missing[0] != governance.MissingInsufficientEvidence {
			t.Fatalf("finding with %d evidence items: missing = %v", n, got.Missing)
		}
	}
}
