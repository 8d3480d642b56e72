// Package governance implements the deterministic core of the decision
// engine: the shared value model, the gate rules that critique and validate
// specialist findings, and the synthesizer that merges per-topic outcomes
// into a single decision. Everything in this package is a pure function of
// its inputs — no I/O, no clocks, no external calls — so the
// governance-critical path is fully reproducible and unit-testable.
package governance

import "slices"

// Severity grades a risk's impact.
type Severity string

// Likelihood grades a risk's probability.
type Likelihood string

// Ordered severity and likelihood grades.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"

	LikelihoodLow    Likelihood = "low"
	LikelihoodMedium Likelihood = "medium"
	LikelihoodHigh   Likelihood = "high"
)

var severityRank = map[Severity]int{
	SeverityLow:    0,
	SeverityMedium: 1,
	SeverityHigh:   2,
}

// Evidence references a supporting document produced by the retrieval
// gateway. Owned by the finding that cites it; never mutated after
// attachment.
type Evidence struct {
	Title   string `json:"title"`
	URI     string `json:"uri"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// Risk is a potential harm identified by an evaluator. Value type: two
// risks with the same description and severity are the same risk.
type Risk struct {
	Description string     `json:"description"`
	Severity    Severity   `json:"severity"`
	Likelihood  Likelihood `json:"likelihood"`
	Mitigation  string     `json:"mitigation,omitempty"`
}

// Unresolved reports whether the risk is high severity with more than low
// likelihood — the combination that blocks a clean GO.
func (r Risk) Unresolved() bool {
	return r.Severity == SeverityHigh && r.Likelihood != LikelihoodLow
}

// Requirement is a control or action an evaluator determined must be in
// place. Tag carries the stable identifier gate rules match against.
type Requirement struct {
	Description string `json:"description"`
	MustHave    bool   `json:"must_have"`
	Tag         string `json:"tag,omitempty"`
}

// Finding is the structured output of one evaluator pass: cited evidence in
// retrieval order, identified risks and requirements, free-text notes, and
// a confidence in [0,1]. Findings are immutable once created; a revision
// produces a new Finding so the audit history survives.
type Finding struct {
	Topic        string        `json:"topic"`
	Evidence     []Evidence    `json:"evidence"`
	Risks        []Risk        `json:"risks"`
	Requirements []Requirement `json:"requirements"`
	Notes        string        `json:"notes,omitempty"`
	Confidence   float64       `json:"confidence"`
}

// HasRequirementTag reports whether the finding carries a must-have
// requirement matching the given control tag.
func (f Finding) HasRequirementTag(tag string) bool {
	return slices.ContainsFunc(f.Requirements, func(r Requirement) bool {
		return r.MustHave && matchesTag(r, tag)
	})
}

// CritiqueStatus is the outcome of a quality-gate pass over one finding.
type CritiqueStatus string

// Critique outcomes.
const (
	CritiqueOK     CritiqueStatus = "ok"
	CritiqueRevise CritiqueStatus = "revise"
)

// Critique records the quality-gate assessment of one finding: whether it
// is acceptable and, if not, the ordered list of missing items.
type Critique struct {
	Status  CritiqueStatus `json:"status"`
	Missing []string       `json:"missing_requirements"`
	Notes   string         `json:"notes,omitempty"`
}

// VerdictStatus is the governance outcome for one finding.
type VerdictStatus string

// Verdict outcomes, ordered HOLD > MITIGATE > GO.
const (
	VerdictGo       VerdictStatus = "GO"
	VerdictMitigate VerdictStatus = "MITIGATE"
	VerdictHold     VerdictStatus = "HOLD"
)

var verdictRank = map[VerdictStatus]int{
	VerdictGo:       0,
	VerdictMitigate: 1,
	VerdictHold:     2,
}

// WorseThan reports whether s is more severe than other.
func (s VerdictStatus) WorseThan(other VerdictStatus) bool {
	return verdictRank[s] > verdictRank[other]
}

// Verdict is the governance outcome for one finding, with a reason naming
// the rule or control that drove it.
type Verdict struct {
	Status VerdictStatus `json:"status"`
	Reason string        `json:"reason"`
}

// TopicResult pairs a finding with its final verdict for one topic.
type TopicResult struct {
	Finding Finding `json:"finding"`
	Verdict Verdict `json:"verdict"`
}

// Decision is the terminal artifact of a session: all per-topic results,
// the deduplicated union of risks and requirements, and the derived
// overall outcome.
type Decision struct {
	CaseID               string        `json:"case_id"`
	Topics               []TopicResult `json:"topics"`
	CombinedRisks        []Risk        `json:"combined_risks"`
	CombinedRequirements []Requirement `json:"combined_requirements"`
	OverallDecision      VerdictStatus `json:"overall_decision"`
	OverallConfidence    float64       `json:"overall_confidence"`
	NeedsHumanReview     bool          `json:"needs_human_review"`
	HumanReviewNote      string        `json:"human_review_note,omitempty"`
}
