// Package engine implements the decision orchestrator: a state graph that
// retrieves evidence, fans evaluators out over the active topics, runs the
// deterministic gate over each finding, loops HOLD topics back within a
// bounded retry budget, and synthesizes the surviving results into one
// decision. Every transition appends one protocol event before the next
// state's work begins.
package engine

import (
	"errors"
	"time"

	"github.com/governet/arbiter/internal/governance"
)

// State bag keys shared across graph nodes.
const (
	KeySessionID   = "session_id"
	KeyReviewState = "review_state"
)

// Sentinel errors for orchestrator operations.
var (
	ErrMissingState   = errors.New("review state missing from graph state")
	ErrNoActiveTopics = errors.New("no active topics to evaluate")
	ErrNoDecision     = errors.New("graph completed without a decision")
)

// Config carries the orchestrator's tunable thresholds and limits.
type Config struct {
	// MinEvidence and ConfidenceFloor parameterize the quality gate.
	MinEvidence     int
	ConfidenceFloor float64

	// MaxRetries bounds how many times a HOLD topic is re-evaluated before
	// its verdict becomes final.
	MaxRetries int

	// Workers caps concurrent gateway and evaluator calls.
	Workers int

	// EvidenceTopK is the result budget per evidence query.
	EvidenceTopK int

	// CallTimeout bounds each individual gateway or reasoning call.
	CallTimeout time.Duration

	// ConfidencePolicy selects the synthesis confidence aggregation.
	ConfidencePolicy governance.ConfidencePolicy
}

// DefaultConfig returns the standard orchestrator settings.
func DefaultConfig() Config {
	return Config{
		MinEvidence:      3,
		ConfidenceFloor:  0.4,
		MaxRetries:       1,
		Workers:          4,
		EvidenceTopK:     5,
		CallTimeout:      60 * time.Second,
		ConfidencePolicy: governance.ConfidenceMinimum,
	}
}

// Gate derives the quality-gate thresholds from the config.
func (c Config) Gate() governance.GateConfig {
	return governance.GateConfig{
		MinEvidence:     c.MinEvidence,
		ConfidenceFloor: c.ConfidenceFloor,
	}
}
