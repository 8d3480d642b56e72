// Package sessions implements the session lifecycle for Arbiter: running
// the orchestrator against a case, persisting the outcome, and exposing the
// recorded decision, its verified trace, and a regulatory export.
package sessions

import (
	"time"

	"github.com/google/uuid"

	"github.com/governet/arbiter/internal/governance"
)

// Status is the lifecycle state of a session row.
type Status string

// Session lifecycle states. Running sessions that crash mid-flight are
// visible as running until operator cleanup; the trail explains how far they
// got.
const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// FailureKind classifies why a session failed, recorded in data rather than
// surfaced as a panic.
type FailureKind string

// Failure classifications.
const (
	FailureGateway   FailureKind = "gateway_failure"
	FailureReasoning FailureKind = "reasoning_failure"
	FailureCancelled FailureKind = "session_cancelled"
	FailureRecorder  FailureKind = "recorder_write_failure"
)

// Session represents one orchestrated review of a case. Decision is present
// only when Status is done.
type Session struct {
	ID          uuid.UUID            `json:"id"`
	CaseID      uuid.UUID            `json:"case_id"`
	Status      Status               `json:"status"`
	FailureKind *FailureKind         `json:"failure_kind,omitempty"`
	Decision    *governance.Decision `json:"decision,omitempty"`
	StartedAt   time.Time            `json:"started_at"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
}

// RunResult is the response to a run request: the completed session and its
// decision.
type RunResult struct {
	Session  *Session             `json:"session"`
	Decision *governance.Decision `json:"decision"`
}
