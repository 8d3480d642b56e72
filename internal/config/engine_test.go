package config_test

import (
	"testing"
	"time"

	"github.com/governet/arbiter/internal/config"
	"github.com/governet/arbiter/internal/governance"
)

func TestEngineConfigFinalizeDefaults(t *testing.T) {
	var cfg config.EngineConfig
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	engine := cfg.Engine()
	if engine.MinEvidence != 3 {
		t.Errorf("min_evidence = %d, want 3", engine.MinEvidence)
	}
	if engine.ConfidenceFloor != 0.4 {
		t.Errorf("confidence_floor = %g, want 0.4", engine.ConfidenceFloor)
	}
	if engine.MaxRetries != 1 {
		t.Errorf("max_retries = %d, want 1", engine.MaxRetries)
	}
	if engine.CallTimeout != 60*time.Second {
		t.Errorf("call_timeout = %s, want 60s", engine.CallTimeout)
	}
	if engine.ConfidencePolicy != governance.ConfidenceMinimum {
		t.Errorf("confidence_policy = %q", engine.ConfidencePolicy)
	}
}

func TestEngineConfigEnvOverride(t *testing.T) {
	t.Setenv("ARBITER_ENGINE_MIN_EVIDENCE", "5")
	t.Setenv("ARBITER_ENGINE_CONFIDENCE_POLICY", "weighted")

	var cfg config.EngineConfig
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	engine := cfg.Engine()
	if engine.MinEvidence != 5 {
		t.Errorf("min_evidence = %d, want 5", engine.MinEvidence)
	}
	if engine.ConfidencePolicy != governance.ConfidenceWeighted {
		t.Errorf("confidence_policy = %q, want weighted", engine.ConfidencePolicy)
	}
}

func TestEngineConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.EngineConfig
	}{
		{name: "bad confidence floor", cfg: config.EngineConfig{ConfidenceFloor: 1.5}},
		{name: "bad call timeout", cfg: config.EngineConfig{CallTimeout: "forever"}},
		{name: "bad confidence policy", cfg: config.EngineConfig{ConfidencePolicy: "mean"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEngineConfigMerge(t *testing.T) {
	base := config.EngineConfig{MinEvidence: 3, CallTimeout: "60s"}
	overlay := config.EngineConfig{MinEvidence: 4, ConfidencePolicy: "weighted"}

	base.Merge(&overlay)
	if base.MinEvidence != 4 {
		t.Errorf("min_evidence = %d, want 4", base.MinEvidence)
	}
	if base.CallTimeout != "60s" {
		t.Errorf("call_timeout = %q, want 60s preserved", base.CallTimeout)
	}
	if base.ConfidencePolicy != "weighted" {
		t.Errorf("confidence_policy = %q, want weighted", base.ConfidencePolicy)
	}
}
