package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/governet/arbiter/internal/engine"
	"github.com/governet/arbiter/internal/governance"
)

const (
	EnvEngineMinEvidence      = "ARBITER_ENGINE_MIN_EVIDENCE"
	EnvEngineConfidenceFloor  = "ARBITER_ENGINE_CONFIDENCE_FLOOR"
	EnvEngineMaxRetries       = "ARBITER_ENGINE_MAX_RETRIES"
	EnvEngineWorkers          = "ARBITER_ENGINE_WORKERS"
	EnvEngineEvidenceTopK     = "ARBITER_ENGINE_EVIDENCE_TOP_K"
	EnvEngineCallTimeout      = "ARBITER_ENGINE_CALL_TIMEOUT"
	EnvEngineConfidencePolicy = "ARBITER_ENGINE_CONFIDENCE_POLICY"
)

// EngineConfig holds the orchestrator's gate thresholds, retry budget, and
// concurrency limits.
type EngineConfig struct {
	MinEvidence      int     `toml:"min_evidence"`
	ConfidenceFloor  float64 `toml:"confidence_floor"`
	MaxRetries       int     `toml:"max_retries"`
	Workers          int     `toml:"workers"`
	EvidenceTopK     int     `toml:"evidence_top_k"`
	CallTimeout      string  `toml:"call_timeout"`
	ConfidencePolicy string  `toml:"confidence_policy"`
}

// Engine converts the finalized config into an engine.Config.
func (c *EngineConfig) Engine() engine.Config {
	timeout, _ := time.ParseDuration(c.CallTimeout)

	return engine.Config{
		MinEvidence:      c.MinEvidence,
		ConfidenceFloor:  c.ConfidenceFloor,
		MaxRetries:       c.MaxRetries,
		Workers:          c.Workers,
		EvidenceTopK:     c.EvidenceTopK,
		CallTimeout:      timeout,
		ConfidencePolicy: governance.ConfidencePolicy(c.ConfidencePolicy),
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *EngineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *EngineConfig) Merge(overlay *EngineConfig) {
	if overlay.MinEvidence != 0 {
		c.MinEvidence = overlay.MinEvidence
	}
	if overlay.ConfidenceFloor != 0 {
		c.ConfidenceFloor = overlay.ConfidenceFloor
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.EvidenceTopK != 0 {
		c.EvidenceTopK = overlay.EvidenceTopK
	}
	if overlay.CallTimeout != "" {
		c.CallTimeout = overlay.CallTimeout
	}
	if overlay.ConfidencePolicy != "" {
		c.ConfidencePolicy = overlay.ConfidencePolicy
	}
}

func (c *EngineConfig) loadDefaults() {
	defaults := engine.DefaultConfig()

	if c.MinEvidence == 0 {
		c.MinEvidence = defaults.MinEvidence
	}
	if c.ConfidenceFloor == 0 {
		c.ConfidenceFloor = defaults.ConfidenceFloor
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaults.MaxRetries
	}
	if c.Workers == 0 {
		c.Workers = defaults.Workers
	}
	if c.EvidenceTopK == 0 {
		c.EvidenceTopK = defaults.EvidenceTopK
	}
	if c.CallTimeout == "" {
		c.CallTimeout = defaults.CallTimeout.String()
	}
	if c.ConfidencePolicy == "" {
		c.ConfidencePolicy = string(defaults.ConfidencePolicy)
	}
}

func (c *EngineConfig) loadEnv() {
	if v := os.Getenv(EnvEngineMinEvidence); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MinEvidence = n
		}
	}
	if v := os.Getenv(EnvEngineConfidenceFloor); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.ConfidenceFloor = f
		}
	}
	if v := os.Getenv(EnvEngineMaxRetries); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv(EnvEngineWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv(EnvEngineEvidenceTopK); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.EvidenceTopK = n
		}
	}
	if v := os.Getenv(EnvEngineCallTimeout); v != "" {
		c.CallTimeout = v
	}
	if v := os.Getenv(EnvEngineConfidencePolicy); v != "" {
		c.ConfidencePolicy = v
	}
}

func (c *EngineConfig) validate() error {
	if c.MinEvidence < 1 {
		return fmt.Errorf("invalid min_evidence: %d", c.MinEvidence)
	}
	if c.ConfidenceFloor < 0 || c.ConfidenceFloor > 1 {
		return fmt.Errorf("invalid confidence_floor: %g", c.ConfidenceFloor)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("invalid max_retries: %d", c.MaxRetries)
	}
	if c.Workers < 1 {
		return fmt.Errorf("invalid workers: %d", c.Workers)
	}
	if c.EvidenceTopK < 1 {
		return fmt.Errorf("invalid evidence_top_k: %d", c.EvidenceTopK)
	}
	if _, err := time.ParseDuration(c.CallTimeout); err != nil {
		return fmt.Errorf("invalid call_timeout: %w", err)
	}

	switch governance.ConfidencePolicy(c.ConfidencePolicy) {
	case governance.ConfidenceMinimum, governance.ConfidenceWeighted:
	default:
		return fmt.Errorf("invalid confidence_policy: %q", c.ConfidencePolicy)
	}
	return nil
}
