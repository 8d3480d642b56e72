package protocol_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/governet/arbiter/internal/protocol"
)

func TestMemoryAppendOrdering(t *testing.T) {
	rec := protocol.NewMemory()
	ctx := context.Background()
	sessionID := uuid.New()

	steps := []protocol.Step{
		protocol.StepSessionStarted,
		protocol.StepRetrieve,
		protocol.StepEvaluate,
		protocol.StepSynthesize,
		protocol.StepSessionDone,
	}

	for _, step := range steps {
		if _, err := rec.Append(ctx, protocol.Entry{
			SessionID: sessionID,
			Step:      step,
			Actor:     "orchestrator",
			Inputs:    map[string]any{"step": string(step)},
		}); err != nil {
			t.Fatalf("append %s: %v", step, err)
		}
	}

	events, err := rec.ListBySession(ctx, sessionID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != len(steps) {
		t.Fatalf("len = %d, want %d", len(events), len(steps))
	}

	for i, e := range events {
		if e.Seq != i+1 {
			t.Errorf("events[%d].Seq = %d, want %d", i, e.Seq, i+1)
		}
		if e.Step != steps[i] {
			t.Errorf("events[%d].Step = %q, want %q", i, e.Step, steps[i])
		}
	}
}

func TestMemoryAppendConcurrent(t *testing.T) {
	rec := protocol.NewMemory()
	ctx := context.Background()
	sessionID := uuid.New()

	const writers = 16
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := rec.Append(ctx, protocol.Entry{
				SessionID: sessionID,
				Step:      protocol.StepEvaluate,
				Actor:     "evaluator",
			})
			if err != nil {
				t.Errorf("append: %v", err)
			}
		}()
	}
	wg.Wait()

	events, err := rec.ListBySession(ctx, sessionID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != writers {
		t.Fatalf("len = %d, want %d", len(events), writers)
	}

	seen := make(map[int]bool, writers)
	for _, e := range events {
		if seen[e.Seq] {
			t.Errorf("duplicate seq %d", e.Seq)
		}
		seen[e.Seq] = true
	}
	for seq := 1; seq <= writers; seq++ {
		if !seen[seq] {
			t.Errorf("missing seq %d", seq)
		}
	}
}

func TestMemorySessionsIsolated(t *testing.T) {
	rec := protocol.NewMemory()
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	for _, id := range []uuid.UUID{a, b, a} {
		if _, err := rec.Append(ctx, protocol.Entry{
			SessionID: id,
			Step:      protocol.StepRetrieve,
			Actor:     "orchestrator",
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	eventsA, _ := rec.ListBySession(ctx, a)
	eventsB, _ := rec.ListBySession(ctx, b)
	if len(eventsA) != 2 || len(eventsB) != 1 {
		t.Errorf("len(a) = %d, len(b) = %d; want 2, 1", len(eventsA), len(eventsB))
	}
	if eventsA[1].Seq != 2 || eventsB[0].Seq != 1 {
		t.Errorf("per-session seq broken: a=%v b=%v", eventsA, eventsB)
	}
}

func TestTraceVerification(t *testing.T) {
	rec := protocol.NewMemory()
	ctx := context.Background()
	sessionID := uuid.New()

	for _, step := range []protocol.Step{
		protocol.StepSessionStarted,
		protocol.StepSynthesize,
		protocol.StepSessionDone,
	} {
		if _, err := rec.Append(ctx, protocol.Entry{
			SessionID: sessionID,
			Step:      step,
			Actor:     "orchestrator",
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	events, err := rec.ListBySession(ctx, sessionID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	trace, err := protocol.NewTrace(sessionID, events)
	if err != nil {
		t.Fatalf("new trace: %v", err)
	}
	if trace.Verification == "" {
		t.Fatal("empty verification hash")
	}
	if !trace.Verify() {
		t.Error("fresh trace fails verification")
	}

	// Any mutation of the recorded events must break verification.
	tampered := *trace
	tampered.Events = append([]protocol.ProtocolEvent(nil), trace.Events...)
	tampered.Events[1].Actor = "intruder"
	if tampered.Verify() {
		t.Error("tampered trace passes verification")
	}

	truncated := *trace
	truncated.Events = trace.Events[:2]
	if truncated.Verify() {
		t.Error("truncated trace passes verification")
	}
}
