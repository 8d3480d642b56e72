package engine

import (
	"strings"

	"github.com/governet/arbiter/internal/cases"
	"github.com/governet/arbiter/internal/governance"
	"github.com/governet/arbiter/internal/topics"
)

// topicReview tracks one topic's progress through the graph. Final marks a
// verdict that no further loop-back may change.
type topicReview struct {
	Topic    topics.Topic
	Evidence []governance.Evidence
	Finding  governance.Finding
	Critique governance.Critique
	Verdict  governance.Verdict
	Retries  int
	Feedback string
	Final    bool
}

// reviewState is the working set the graph threads between nodes.
type reviewState struct {
	Case     *cases.Case
	Controls []governance.Control
	Topics   []topicReview
	Decision *governance.Decision
}

// pending returns the indices of topics still moving through the graph.
func (rs *reviewState) pending() []int {
	var indices []int
	for i, t := range rs.Topics {
		if !t.Final {
			indices = append(indices, i)
		}
	}
	return indices
}

func (rs *reviewState) results() []governance.TopicResult {
	results := make([]governance.TopicResult, len(rs.Topics))
	for i, t := range rs.Topics {
		results[i] = governance.TopicResult{Finding: t.Finding, Verdict: t.Verdict}
	}
	return results
}

// feedback renders the critique of a rejected finding into the context
// handed back to the evaluator on loop-back.
func feedback(c governance.Critique) string {
	var sb strings.Builder
	if c.Notes != "" {
		sb.WriteString(c.Notes)
	}
	if len(c.Missing) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString("missing: ")
		sb.WriteString(strings.Join(c.Missing, ", "))
	}
	return sb.String()
}
