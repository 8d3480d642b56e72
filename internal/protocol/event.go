// Package protocol implements the append-only audit trail for decision
// sessions. Every orchestrator state transition appends exactly one event;
// events are totally ordered per session by a transactionally assigned
// sequence number and are never updated or deleted.
package protocol

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Step identifies the orchestrator transition an event records.
type Step string

// Orchestrator steps in the order a session moves through them.
const (
	StepSessionStarted Step = "session_started"
	StepRetrieve       Step = "retrieve"
	StepEvaluate       Step = "evaluate"
	StepCritique       Step = "critique"
	StepValidate       Step = "validate"
	StepLoopBack       Step = "loop_back"
	StepSynthesize     Step = "synthesize"
	StepSessionDone    Step = "session_done"
	StepSessionFailed  Step = "session_failed"
)

// ProtocolEvent is one immutable audit record. Seq starts at 1 and is gapless
// and unique within a session. Inputs and Outputs hold references to the data
// the step consumed and produced; DecisionState optionally snapshots the
// in-flight decision.
type ProtocolEvent struct {
	SessionID     uuid.UUID       `json:"session_id"`
	Seq           int             `json:"seq"`
	Step          Step            `json:"step"`
	Actor         string          `json:"actor"`
	Inputs        json.RawMessage `json:"inputs_ref"`
	Outputs       json.RawMessage `json:"outputs_ref"`
	DecisionState string          `json:"decision_state,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Entry carries the caller-supplied portion of an event; the recorder assigns
// sequence and timestamp. Inputs and Outputs may be any JSON-encodable value.
type Entry struct {
	SessionID     uuid.UUID
	Step          Step
	Actor         string
	Inputs        any
	Outputs       any
	DecisionState string
}

func encodeRef(v any) (json.RawMessage, error) {
	if v == nil {
		return json.RawMessage(`{}`), nil
	}
	return json.Marshal(v)
}
