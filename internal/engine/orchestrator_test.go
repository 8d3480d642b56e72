package engine_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/governet/arbiter/internal/cases"
	"github.com/governet/arbiter/internal/engine"
	"github.com/governet/arbiter/internal/evidence"
	"github.com/governet/arbiter/internal/governance"
	"github.com/governet/arbiter/internal/protocol"
	"github.com/governet/arbiter/internal/topics"
)

// stubEvaluator dispatches to a per-attempt function and tracks call counts
// per topic.
type stubEvaluator struct {
	mu       sync.Mutex
	attempts map[string]int
	evaluate func(req engine.EvaluationRequest, attempt int) (governance.Finding, error)
}

func (s *stubEvaluator) Evaluate(_ context.Context, req engine.EvaluationRequest) (governance.Finding, error) {
	s.mu.Lock()
	s.attempts[req.Topic.Name]++
	attempt := s.attempts[req.Topic.Name]
	s.mu.Unlock()

	return s.evaluate(req, attempt)
}

func (s *stubEvaluator) calls(topic string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[topic]
}

func goodFinding(req engine.EvaluationRequest) governance.Finding {
	return governance.Finding{
		Topic:      req.Topic.Name,
		Evidence:   req.Evidence,
		Notes:      "no concerns",
		Confidence: 0.9,
	}
}

func testCase(attrs map[string]any) *cases.Case {
	return &cases.Case{
		ID:         uuid.New(),
		Title:      "Downtown corridor sensors",
		Context:    "Deploy a corridor sensor package downtown.",
		Attributes: attrs,
	}
}

func testTopics(names ...string) []topics.Topic {
	list := make([]topics.Topic, len(names))
	for i, name := range names {
		list[i] = topics.Topic{
			ID:            uuid.New(),
			Name:          name,
			Role:          "You are the " + name + " reviewer.",
			QueryTemplate: name + " considerations for {context}",
			Active:        true,
		}
	}
	return list
}

func newRuntime(eval engine.Evaluator, rec protocol.Recorder) *engine.Runtime {
	cfg := engine.DefaultConfig()
	cfg.CallTimeout = time.Second

	return &engine.Runtime{
		Evaluator: eval,
		Evidence:  evidence.NewStub(3),
		Recorder:  rec,
		Logger:    slog.New(slog.DiscardHandler),
		Config:    cfg,
	}
}

func TestExecuteCleanCase(t *testing.T) {
	eval := &stubEvaluator{
		attempts: map[string]int{},
		evaluate: func(req engine.EvaluationRequest, _ int) (governance.Finding, error) {
			return goodFinding(req), nil
		},
	}
	rec := protocol.NewMemory()
	rt := newRuntime(eval, rec)
	sessionID := uuid.New()

	decision, err := engine.Execute(
		context.Background(), rt, sessionID,
		testCase(map[string]any{"sensors": map[string]any{"video": false}}),
		testTopics("privacy", "connectivity", "public-safety"),
		nil,
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if decision.OverallDecision != governance.VerdictGo {
		t.Errorf("overall = %q, want GO", decision.OverallDecision)
	}
	if decision.NeedsHumanReview {
		t.Error("clean case flagged for human review")
	}
	if len(decision.Topics) != 3 {
		t.Errorf("topics = %d, want 3", len(decision.Topics))
	}

	events, err := rec.ListBySession(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}

	wantSteps := []protocol.Step{
		protocol.StepRetrieve,
		protocol.StepEvaluate,
		protocol.StepCritique,
		protocol.StepValidate,
		protocol.StepSynthesize,
	}
	if len(events) != len(wantSteps) {
		t.Fatalf("events = %d, want %d", len(events), len(wantSteps))
	}
	for i, e := range events {
		if e.Step != wantSteps[i] {
			t.Errorf("events[%d].Step = %q, want %q", i, e.Step, wantSteps[i])
		}
		if e.Seq != i+1 {
			t.Errorf("events[%d].Seq = %d, want %d", i, e.Seq, i+1)
		}
	}
}

func TestExecuteHardControlHolds(t *testing.T) {
	// Evaluator never produces the CJIS requirement, so the triggered hard
	// control must drive the topic through its retry and into a final HOLD.
	eval := &stubEvaluator{
		attempts: map[string]int{},
		evaluate: func(req engine.EvaluationRequest, _ int) (governance.Finding, error) {
			return goodFinding(req), nil
		},
	}
	rec := protocol.NewMemory()
	rt := newRuntime(eval, rec)
	sessionID := uuid.New()

	table := []governance.Control{{
		ID:          "cjis-alpr",
		Attribute:   "sensors.alpr",
		RequiredTag: "cjis-compliance",
		Hard:        true,
		Enabled:     true,
	}}

	decision, err := engine.Execute(
		context.Background(), rt, sessionID,
		testCase(map[string]any{"sensors": map[string]any{"alpr": true}}),
		testTopics("public-safety"),
		table,
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if decision.OverallDecision != governance.VerdictHold {
		t.Errorf("overall = %q, want HOLD", decision.OverallDecision)
	}
	if !decision.NeedsHumanReview {
		t.Error("HOLD decision not flagged for human review")
	}
	if got := eval.calls("public-safety"); got != 2 {
		t.Errorf("evaluator calls = %d, want 2 (initial + one retry)", got)
	}

	events, _ := rec.ListBySession(context.Background(), sessionID)
	var loopBacks int
	for _, e := range events {
		if e.Step == protocol.StepLoopBack {
			loopBacks++
		}
	}
	if loopBacks != 1 {
		t.Errorf("loop_back events = %d, want 1", loopBacks)
	}
}

func TestExecuteLoopBackRecovers(t *testing.T) {
	// First attempt fails the confidence floor; the retry must carry the
	// critique feedback and its improved finding must reach GO.
	eval := &stubEvaluator{
		attempts: map[string]int{},
		evaluate: func(req engine.EvaluationRequest, attempt int) (governance.Finding, error) {
			if attempt == 1 {
				f := goodFinding(req)
				f.Confidence = 0.2
				return f, nil
			}
			if req.Feedback == "" {
				return governance.Finding{}, errors.New("retry missing critique feedback")
			}
			return goodFinding(req), nil
		},
	}
	rec := protocol.NewMemory()
	rt := newRuntime(eval, rec)

	decision, err := engine.Execute(
		context.Background(), rt, uuid.New(),
		testCase(nil),
		testTopics("sustainability"),
		nil,
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if decision.OverallDecision != governance.VerdictGo {
		t.Errorf("overall = %q, want GO after recovery", decision.OverallDecision)
	}
	if got := eval.calls("sustainability"); got != 2 {
		t.Errorf("evaluator calls = %d, want 2", got)
	}
}

func TestExecuteEvaluatorFailureDegrades(t *testing.T) {
	eval := &stubEvaluator{
		attempts: map[string]int{},
		evaluate: func(engine.EvaluationRequest, int) (governance.Finding, error) {
			return governance.Finding{}, errors.New("model unavailable")
		},
	}
	rt := newRuntime(eval, protocol.NewMemory())

	decision, err := engine.Execute(
		context.Background(), rt, uuid.New(),
		testCase(nil),
		testTopics("privacy", "ot-security"),
		nil,
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	// Degraded findings carry no evidence, so the gate holds every topic.
	if decision.OverallDecision != governance.VerdictHold {
		t.Errorf("overall = %q, want HOLD", decision.OverallDecision)
	}
	if decision.OverallConfidence != 0 {
		t.Errorf("confidence = %v, want 0", decision.OverallConfidence)
	}
}

func TestExecuteNoActiveTopics(t *testing.T) {
	rt := newRuntime(&stubEvaluator{attempts: map[string]int{}}, protocol.NewMemory())

	_, err := engine.Execute(context.Background(), rt, uuid.New(), testCase(nil), nil, nil)
	if !errors.Is(err, engine.ErrNoActiveTopics) {
		t.Fatalf("err = %v, want %v", err, engine.ErrNoActiveTopics)
	}
}

func TestExecuteCancelled(t *testing.T) {
	eval := &stubEvaluator{
		attempts: map[string]int{},
		evaluate: func(req engine.EvaluationRequest, _ int) (governance.Finding, error) {
			return goodFinding(req), nil
		},
	}
	rt := newRuntime(eval, protocol.NewMemory())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Execute(ctx, rt, uuid.New(), testCase(nil), testTopics("privacy"), nil)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
