package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/governet/arbiter/internal/cases"
	"github.com/governet/arbiter/internal/governance"
	"github.com/governet/arbiter/internal/protocol"
	"github.com/governet/arbiter/internal/topics"
)

// Execute runs a full review session for one case: it builds the state graph
// (retrieve → evaluate → critique → validate → loop back? → synthesize),
// executes it, and extracts the synthesized decision from the final state.
// The caller owns session bookkeeping; this function owns everything between
// the session-start and session-end protocol events.
func Execute(
	ctx context.Context,
	rt *Runtime,
	sessionID uuid.UUID,
	c *cases.Case,
	topicList []topics.Topic,
	table []governance.Control,
) (*governance.Decision, error) {
	if len(topicList) == 0 {
		return nil, ErrNoActiveTopics
	}

	graph, err := buildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	reviews := make([]topicReview, len(topicList))
	for i, t := range topicList {
		reviews[i] = topicReview{Topic: t}
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeySessionID, sessionID)
	initialState = initialState.Set(KeyReviewState, reviewState{
		Case:     c,
		Controls: table,
		Topics:   reviews,
	})

	finalState, err := graph.Execute(ctx, initialState)
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	rs, err := extractReviewState(finalState)
	if err != nil {
		return nil, err
	}
	if rs.Decision == nil {
		return nil, ErrNoDecision
	}
	return rs.Decision, nil
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("arbiter-review")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("retrieve", RetrieveNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("evaluate", EvaluateNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("critique", CritiqueNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("validate", ValidateNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("synthesize", SynthesizeNode(rt)); err != nil {
		return nil, err
	}

	// retrieve → evaluate → critique → validate (unconditional)
	if err := graph.AddEdge("retrieve", "evaluate", nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("evaluate", "critique", nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("critique", "validate", nil); err != nil {
		return nil, err
	}

	// validate → retrieve (when HOLD topics still have retry budget)
	if err := graph.AddEdge("validate", "retrieve", needsLoopBack); err != nil {
		return nil, err
	}

	// validate → synthesize (when every verdict is final)
	if err := graph.AddEdge("validate", "synthesize", state.Not(needsLoopBack)); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("retrieve"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("synthesize"); err != nil {
		return nil, err
	}

	return graph, nil
}

// RetrieveNode returns a state node that queries the evidence gateway for
// every pending topic with bounded concurrency. A gateway failure degrades
// that topic to empty evidence instead of failing the session; the quality
// gate downstream turns thin evidence into a HOLD.
func RetrieveNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		sessionID, rs, err := extractSession(s)
		if err != nil {
			return s, fmt.Errorf("retrieve: %w", err)
		}

		pending := rs.pending()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workerCount(rt.Config.Workers, len(pending)))

		for _, idx := range pending {
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}

				review := &rs.Topics[idx]
				query := review.Topic.EvidenceQuery(rs.Case.Context)

				callCtx, cancel := context.WithTimeout(gctx, rt.Config.CallTimeout)
				defer cancel()

				results, err := rt.Evidence.Query(callCtx, query, rt.Config.EvidenceTopK)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					rt.Logger.Warn(
						"evidence retrieval degraded",
						"session_id", sessionID,
						"topic", review.Topic.Name,
						"error", err,
					)
					review.Evidence = nil
					return nil
				}

				review.Evidence = results
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return s, fmt.Errorf("retrieve: %w", err)
		}

		counts := make(map[string]any, len(pending))
		for _, idx := range pending {
			counts[rs.Topics[idx].Topic.Name] = len(rs.Topics[idx].Evidence)
		}

		if err := record(ctx, rt, protocol.Entry{
			SessionID: sessionID,
			Step:      protocol.StepRetrieve,
			Actor:     "gateway",
			Inputs:    map[string]any{"topics": pendingNames(rs, pending)},
			Outputs:   map[string]any{"evidence_counts": counts},
		}); err != nil {
			return s, fmt.Errorf("retrieve: %w", err)
		}

		return s.Set(KeyReviewState, rs), nil
	})
}

// EvaluateNode returns a state node that fans the evaluator out over every
// pending topic with bounded errgroup concurrency. A reasoning failure
// degrades that topic to a zero-confidence finding; only cancellation fails
// the node.
func EvaluateNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		sessionID, rs, err := extractSession(s)
		if err != nil {
			return s, fmt.Errorf("evaluate: %w", err)
		}

		pending := rs.pending()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workerCount(rt.Config.Workers, len(pending)))

		for _, idx := range pending {
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}

				review := &rs.Topics[idx]
				req := EvaluationRequest{
					Topic:       review.Topic,
					CaseContext: rs.Case.Context,
					Attributes:  rs.Case.Attributes,
					Evidence:    review.Evidence,
					Feedback:    review.Feedback,
				}

				callCtx, cancel := context.WithTimeout(gctx, rt.Config.CallTimeout)
				defer cancel()

				finding, err := rt.Evaluator.Evaluate(callCtx, req)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					rt.Logger.Warn(
						"evaluation degraded",
						"session_id", sessionID,
						"topic", review.Topic.Name,
						"error", err,
					)
					review.Finding = DegradedFinding(review.Topic.Name, err.Error())
					return nil
				}

				review.Finding = finding
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return s, fmt.Errorf("evaluate: %w", err)
		}

		confidences := make(map[string]any, len(pending))
		for _, idx := range pending {
			confidences[rs.Topics[idx].Topic.Name] = rs.Topics[idx].Finding.Confidence
		}

		if err := record(ctx, rt, protocol.Entry{
			SessionID: sessionID,
			Step:      protocol.StepEvaluate,
			Actor:     "evaluators",
			Inputs:    map[string]any{"topics": pendingNames(rs, pending)},
			Outputs:   map[string]any{"confidences": confidences},
		}); err != nil {
			return s, fmt.Errorf("evaluate: %w", err)
		}

		return s.Set(KeyReviewState, rs), nil
	})
}

// CritiqueNode returns a state node that runs the deterministic quality gate
// over every pending finding.
func CritiqueNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		sessionID, rs, err := extractSession(s)
		if err != nil {
			return s, fmt.Errorf("critique: %w", err)
		}

		pending := rs.pending()
		statuses := make(map[string]any, len(pending))

		for _, idx := range pending {
			review := &rs.Topics[idx]
			review.Critique = governance.Review(
				review.Finding,
				rs.Case.Attributes,
				rs.Controls,
				rt.Config.Gate(),
			)
			statuses[review.Topic.Name] = review.Critique.Status
		}

		if err := record(ctx, rt, protocol.Entry{
			SessionID: sessionID,
			Step:      protocol.StepCritique,
			Actor:     "gate",
			Inputs:    map[string]any{"topics": pendingNames(rs, pending)},
			Outputs:   map[string]any{"statuses": statuses},
		}); err != nil {
			return s, fmt.Errorf("critique: %w", err)
		}

		return s.Set(KeyReviewState, rs), nil
	})
}

// ValidateNode returns a state node that derives each pending topic's
// verdict and decides which HOLD topics loop back. Topics out of retry
// budget become final; a scheduled loop-back appends its own protocol event
// before the cycle re-enters retrieval.
func ValidateNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		sessionID, rs, err := extractSession(s)
		if err != nil {
			return s, fmt.Errorf("validate: %w", err)
		}

		pending := rs.pending()
		verdicts := make(map[string]any, len(pending))
		var retried []string

		for _, idx := range pending {
			review := &rs.Topics[idx]
			review.Verdict = governance.Validate(
				review.Finding,
				review.Critique,
				rs.Case.Attributes,
				rs.Controls,
			)
			verdicts[review.Topic.Name] = review.Verdict.Status

			if review.Verdict.Status == governance.VerdictHold && review.Retries < rt.Config.MaxRetries {
				review.Retries++
				review.Feedback = feedback(review.Critique)
				retried = append(retried, review.Topic.Name)
				continue
			}
			review.Final = true
		}

		if err := record(ctx, rt, protocol.Entry{
			SessionID: sessionID,
			Step:      protocol.StepValidate,
			Actor:     "gate",
			Inputs:    map[string]any{"topics": pendingNames(rs, pending)},
			Outputs:   map[string]any{"verdicts": verdicts},
		}); err != nil {
			return s, fmt.Errorf("validate: %w", err)
		}

		if len(retried) > 0 {
			if err := record(ctx, rt, protocol.Entry{
				SessionID: sessionID,
				Step:      protocol.StepLoopBack,
				Actor:     "orchestrator",
				Inputs:    map[string]any{"topics": retried},
				Outputs:   map[string]any{"max_retries": rt.Config.MaxRetries},
			}); err != nil {
				return s, fmt.Errorf("validate: %w", err)
			}
		}

		return s.Set(KeyReviewState, rs), nil
	})
}

// SynthesizeNode returns a state node that merges every topic result into
// the session decision.
func SynthesizeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		sessionID, rs, err := extractSession(s)
		if err != nil {
			return s, fmt.Errorf("synthesize: %w", err)
		}

		decision := governance.Synthesize(
			rs.Case.ID.String(),
			rs.results(),
			rt.Config.ConfidencePolicy,
		)
		rs.Decision = &decision

		if err := record(ctx, rt, protocol.Entry{
			SessionID: sessionID,
			Step:      protocol.StepSynthesize,
			Actor:     "synthesizer",
			Inputs:    map[string]any{"topics": len(rs.Topics)},
			Outputs: map[string]any{
				"overall_decision":   decision.OverallDecision,
				"overall_confidence": decision.OverallConfidence,
				"needs_human_review": decision.NeedsHumanReview,
			},
			DecisionState: string(decision.OverallDecision),
		}); err != nil {
			return s, fmt.Errorf("synthesize: %w", err)
		}

		rt.Logger.Info(
			"session synthesized",
			"session_id", sessionID,
			"case_id", rs.Case.ID,
			"overall", decision.OverallDecision,
		)

		return s.Set(KeyReviewState, rs), nil
	})
}

func record(ctx context.Context, rt *Runtime, e protocol.Entry) error {
	_, err := rt.Recorder.Append(ctx, e)
	return err
}

func needsLoopBack(s state.State) bool {
	rs, err := extractReviewState(s)
	if err != nil {
		return false
	}
	return len(rs.pending()) > 0
}

func extractSession(s state.State) (uuid.UUID, reviewState, error) {
	idVal, ok := s.Get(KeySessionID)
	if !ok {
		return uuid.Nil, reviewState{}, fmt.Errorf("%w: missing %s", ErrMissingState, KeySessionID)
	}

	sessionID, ok := idVal.(uuid.UUID)
	if !ok {
		return uuid.Nil, reviewState{}, fmt.Errorf("%w: %s is not uuid.UUID", ErrMissingState, KeySessionID)
	}

	rs, err := extractReviewState(s)
	if err != nil {
		return uuid.Nil, reviewState{}, err
	}

	return sessionID, rs, nil
}

func extractReviewState(s state.State) (reviewState, error) {
	val, ok := s.Get(KeyReviewState)
	if !ok {
		return reviewState{}, fmt.Errorf("%w: missing %s", ErrMissingState, KeyReviewState)
	}

	rs, ok := val.(reviewState)
	if !ok {
		return reviewState{}, fmt.Errorf("%w: %s is not reviewState", ErrMissingState, KeyReviewState)
	}

	return rs, nil
}

func workerCount(limit, pending int) int {
	return max(min(limit, pending), 1)
}

func pendingNames(rs reviewState, pending []int) []string {
	names := make([]string, len(pending))
	for i, idx := range pending {
		names[i] = rs.Topics[idx].Topic.Name
	}
	return names
}
