package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/governet/arbiter/internal/governance"
	"github.com/governet/arbiter/internal/topics"
	"github.com/governet/arbiter/pkg/formatting"
)

// EvaluationRequest carries everything one specialist pass needs: the topic
// definition, the case under review, the retrieved evidence, and — on a
// loop-back — the critique feedback from the rejected attempt.
type EvaluationRequest struct {
	Topic       topics.Topic
	CaseContext string
	Attributes  map[string]any
	Evidence    []governance.Evidence
	Feedback    string
}

// Evaluator produces a structured finding for one topic. Implementations
// must honor context cancellation; the orchestrator applies per-call
// timeouts.
type Evaluator interface {
	Evaluate(ctx context.Context, req EvaluationRequest) (governance.Finding, error)
}

// findingResponse is the JSON contract the reasoning model fills in. The
// evidence citations come from the request, not the model, so a model cannot
// fabricate sources.
type findingResponse struct {
	Risks        []governance.Risk        `json:"risks"`
	Requirements []governance.Requirement `json:"requirements"`
	Notes        string                   `json:"notes"`
	Confidence   float64                  `json:"confidence"`
}

type agentEvaluator struct {
	cfg    gaconfig.AgentConfig
	logger *slog.Logger
}

// NewAgentEvaluator creates the production evaluator backed by the
// configured reasoning model. Each call constructs its own agent so
// concurrent evaluations never share conversation state.
func NewAgentEvaluator(cfg gaconfig.AgentConfig, logger *slog.Logger) Evaluator {
	return &agentEvaluator{
		cfg:    cfg,
		logger: logger.With("system", "evaluator"),
	}
}

func (e *agentEvaluator) Evaluate(ctx context.Context, req EvaluationRequest) (governance.Finding, error) {
	a, err := agent.New(&e.cfg)
	if err != nil {
		return governance.Finding{}, fmt.Errorf("create agent: %w", err)
	}

	prompt, err := composePrompt(req)
	if err != nil {
		return governance.Finding{}, fmt.Errorf("compose prompt: %w", err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return governance.Finding{}, fmt.Errorf("chat call: %w", err)
	}

	parsed, err := formatting.Parse[findingResponse](resp.Content())
	if err != nil {
		return governance.Finding{}, fmt.Errorf("parse finding response: %w", err)
	}

	e.logger.Debug(
		"topic evaluated",
		"topic", req.Topic.Name,
		"risks", len(parsed.Risks),
		"confidence", parsed.Confidence,
	)

	return governance.Finding{
		Topic:        req.Topic.Name,
		Evidence:     req.Evidence,
		Risks:        parsed.Risks,
		Requirements: parsed.Requirements,
		Notes:        parsed.Notes,
		Confidence:   clamp01(parsed.Confidence),
	}, nil
}

// composePrompt builds the evaluator prompt: role instructions, the response
// contract, the case under review, the retrieved evidence, and any
// loop-back feedback.
func composePrompt(req EvaluationRequest) (string, error) {
	attrs, err := json.MarshalIndent(req.Attributes, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize case attributes: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(req.Topic.Role)
	sb.WriteString("\n\nRespond with a single JSON object matching:\n")
	sb.WriteString(`{"risks":[{"description":"","severity":"low|medium|high","likelihood":"low|medium|high","mitigation":""}],`)
	sb.WriteString(`"requirements":[{"description":"","must_have":true,"tag":""}],`)
	sb.WriteString(`"notes":"","confidence":0.0}`)
	sb.WriteString("\n\nDeployment under review:\n\n")
	sb.WriteString(req.CaseContext)
	sb.WriteString("\n\nDeclared capabilities:\n\n")
	sb.Write(attrs)

	if len(req.Evidence) > 0 {
		sb.WriteString("\n\nRetrieved evidence:\n")
		for i, ev := range req.Evidence {
			fmt.Fprintf(&sb, "\n%d. %s (%s)\n%s", i+1, ev.Title, ev.URI, ev.Snippet)
		}
	}

	if req.Feedback != "" {
		sb.WriteString("\n\nYour previous finding was rejected. Address this feedback:\n\n")
		sb.WriteString(req.Feedback)
	}

	return sb.String(), nil
}

// DegradedFinding is the stand-in recorded when a gateway or reasoning call
// fails: no evidence, zero confidence, so the quality gate rejects it rather
// than letting a silent failure pass review.
func DegradedFinding(topic, reason string) governance.Finding {
	return governance.Finding{
		Topic:    topic,
		Evidence: []governance.Evidence{},
		Notes:    "evaluation degraded: " + reason,
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
