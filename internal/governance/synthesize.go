package governance

import (
	"cmp"
	"slices"
)

// ConfidencePolicy selects how per-finding confidences aggregate into the
// decision's overall confidence.
type ConfidencePolicy string

const (
	// ConfidenceMinimum takes the lowest confidence across findings —
	// pessimistic aggregation, so one weak finding cannot hide behind
	// strong ones. This is the default policy.
	ConfidenceMinimum ConfidencePolicy = "minimum"

	// ConfidenceWeighted takes the mean confidence weighted by each
	// finding's evidence count.
	ConfidenceWeighted ConfidencePolicy = "weighted"
)

// Human-review note templates keyed by triggering condition.
const (
	noteHold = "Session concluded in HOLD; a human reviewer must resolve the " +
		"blocking controls before any deployment action."
	noteHighRiskMitigate = "High-severity risk remains under MITIGATE; human " +
		"review of the mitigation plan is recommended."
)

// Synthesize merges all per-topic results into one decision. Pure
// aggregation over already-produced structured data: deterministic,
// idempotent, and insensitive to input ordering.
func Synthesize(caseID string, results []TopicResult, policy ConfidencePolicy) Decision {
	topics := slices.Clone(results)
	slices.SortFunc(topics, func(a, b TopicResult) int {
		return cmp.Compare(a.Finding.Topic, b.Finding.Topic)
	})

	overall := VerdictGo
	for _, t := range topics {
		if t.Verdict.Status.WorseThan(overall) {
			overall = t.Verdict.Status
		}
	}

	risks := combineRisks(topics)
	requirements := combineRequirements(topics)

	needsReview, note := reviewFlag(overall, risks)

	return Decision{
		CaseID:               caseID,
		Topics:               topics,
		CombinedRisks:        risks,
		CombinedRequirements: requirements,
		OverallDecision:      overall,
		OverallConfidence:    aggregateConfidence(topics, policy),
		NeedsHumanReview:     needsReview,
		HumanReviewNote:      note,
	}
}

func combineRisks(topics []TopicResult) []Risk {
	type key struct {
		description string
		severity    Severity
	}

	seen := make(map[key]struct{})
	combined := make([]Risk, 0)
	for _, t := range topics {
		for _, r := range t.Finding.Risks {
			k := key{r.Description, r.Severity}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			combined = append(combined, r)
		}
	}

	slices.SortFunc(combined, func(a, b Risk) int {
		if c := cmp.Compare(a.Description, b.Description); c != 0 {
			return c
		}
		return cmp.Compare(severityRank[a.Severity], severityRank[b.Severity])
	})
	return combined
}

func combineRequirements(topics []TopicResult) []Requirement {
	type key struct {
		description string
		mustHave    bool
	}

	seen := make(map[key]struct{})
	combined := make([]Requirement, 0)
	for _, t := range topics {
		for _, r := range t.Finding.Requirements {
			k := key{r.Description, r.MustHave}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			combined = append(combined, r)
		}
	}

	slices.SortFunc(combined, func(a, b Requirement) int {
		if c := cmp.Compare(a.Description, b.Description); c != 0 {
			return c
		}
		return cmp.Compare(boolRank(a.MustHave), boolRank(b.MustHave))
	})
	return combined
}

func aggregateConfidence(topics []TopicResult, policy ConfidencePolicy) float64 {
	if len(topics) == 0 {
		return 0
	}

	if policy == ConfidenceWeighted {
		var weighted, total float64
		for _, t := range topics {
			w := float64(len(t.Finding.Evidence))
			weighted += t.Finding.Confidence * w
			total += w
		}
		if total == 0 {
			return 0
		}
		return weighted / total
	}

	lowest := topics[0].Finding.Confidence
	for _, t := range topics[1:] {
		if t.Finding.Confidence < lowest {
			lowest = t.Finding.Confidence
		}
	}
	return lowest
}

func reviewFlag(overall VerdictStatus, risks []Risk) (bool, string) {
	switch {
	case overall == VerdictHold:
		return true, noteHold
	case overall == VerdictMitigate && slices.ContainsFunc(risks, Risk.Unresolved):
		return true, noteHighRiskMitigate
	default:
		return false, ""
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
