package protocol

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memory struct {
	mu     sync.Mutex
	events map[uuid.UUID][]ProtocolEvent
}

// NewMemory creates an in-memory recorder for tests and local runs.
func NewMemory() Recorder {
	return &memory{events: map[uuid.UUID][]ProtocolEvent{}}
}

func (r *memory) Append(ctx context.Context, e Entry) (*ProtocolEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inputs, err := encodeRef(e.Inputs)
	if err != nil {
		return nil, err
	}
	outputs, err := encodeRef(e.Outputs)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	event := ProtocolEvent{
		SessionID:     e.SessionID,
		Seq:           len(r.events[e.SessionID]) + 1,
		Step:          e.Step,
		Actor:         e.Actor,
		Inputs:        inputs,
		Outputs:       outputs,
		DecisionState: e.DecisionState,
		Timestamp:     time.Now().UTC(),
	}
	r.events[e.SessionID] = append(r.events[e.SessionID], event)
	return &event, nil
}

func (r *memory) ListBySession(_ context.Context, sessionID uuid.UUID) ([]ProtocolEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]ProtocolEvent, len(r.events[sessionID]))
	copy(events, r.events[sessionID])
	return events, nil
}
