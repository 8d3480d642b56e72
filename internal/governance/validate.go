package governance

import (
	"fmt"
	"strings"
)

// Validate derives the governance verdict for one finding from its critique,
// the case attributes, and the same control table used during critique.
// This is a total function: every input yields exactly one verdict, and
// HOLD only ever originates from a revise critique or a hard control
// failure.
func Validate(f Finding, c Critique, attrs map[string]any, table []Control) Verdict {
	if c.Status == CritiqueRevise {
		return Verdict{
			Status: VerdictHold,
			Reason: "quality gate failed: " + strings.Join(c.Missing, ", "),
		}
	}

	// Critique already enforces control coverage, but validation re-checks
	// independently so a verdict never depends on critique internals.
	soft := ""
	for _, ctl := range ActiveControls(table) {
		if !ctl.Triggered(attrs) || f.HasRequirementTag(ctl.RequiredTag) {
			continue
		}
		if ctl.Hard {
			return Verdict{
				Status: VerdictHold,
				Reason: fmt.Sprintf(
					"control %s unsatisfied: required %q requirement missing",
					ctl.ID, ctl.RequiredTag,
				),
			}
		}
		if soft == "" {
			soft = fmt.Sprintf(
				"control %s unsatisfied: advisory %q requirement missing",
				ctl.ID, ctl.RequiredTag,
			)
		}
	}
	if soft != "" {
		return Verdict{Status: VerdictMitigate, Reason: soft}
	}

	for _, r := range f.Risks {
		if r.Unresolved() {
			return Verdict{
				Status: VerdictMitigate,
				Reason: "unresolved high-severity risk: " + r.Description,
			}
		}
	}

	return Verdict{Status: VerdictGo, Reason: "all governance gates passed"}
}
