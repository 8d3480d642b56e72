package governance

import "fmt"

// Missing-item identifiers appended by the fixed critique rules.
const (
	MissingInsufficientEvidence = "insufficient_evidence"
	MissingLowConfidence        = "low_confidence"
)

// GateConfig carries the thresholds for the quality gate.
type GateConfig struct {
	// MinEvidence is the minimum number of cited evidence items a finding
	// must carry to pass critique.
	MinEvidence int

	// ConfidenceFloor is the minimum evaluator confidence accepted without
	// revision.
	ConfidenceFloor float64
}

// DefaultGateConfig returns the standard gate thresholds.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MinEvidence:     3,
		ConfidenceFloor: 0.4,
	}
}

// Review critiques a finding against the case attributes and control table.
// Rules run in a fixed order — evidence floor, triggered-control coverage,
// confidence floor — and the first failing rule short-circuits, so a
// critique always names the earliest problem to fix.
func Review(f Finding, attrs map[string]any, table []Control, cfg GateConfig) Critique {
	if len(f.Evidence) < cfg.MinEvidence {
		return Critique{
			Status:  CritiqueRevise,
			Missing: []string{MissingInsufficientEvidence},
			Notes: fmt.Sprintf(
				"finding cites %d evidence items; at least %d required",
				len(f.Evidence), cfg.MinEvidence,
			),
		}
	}

	var missing []string
	for _, c := range ActiveControls(table) {
		if c.Triggered(attrs) && !f.HasRequirementTag(c.RequiredTag) {
			missing = append(missing, c.RequiredTag)
		}
	}
	if len(missing) > 0 {
		return Critique{
			Status:  CritiqueRevise,
			Missing: missing,
			Notes:   "triggered controls lack matching must-have requirements",
		}
	}

	if f.Confidence < cfg.ConfidenceFloor {
		return Critique{
			Status:  CritiqueRevise,
			Missing: []string{MissingLowConfidence},
			Notes: fmt.Sprintf(
				"confidence %.2f below floor %.2f",
				f.Confidence, cfg.ConfidenceFloor,
			),
		}
	}

	return Critique{Status: CritiqueOK, Missing: []string{}}
}
