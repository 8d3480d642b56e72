package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvEvidenceBaseURL     = "ARBITER_EVIDENCE_BASE_URL"
	EnvEvidenceTimeout     = "ARBITER_EVIDENCE_TIMEOUT"
	EnvEvidenceStubResults = "ARBITER_EVIDENCE_STUB_RESULTS"
)

// EvidenceConfig holds retrieval gateway settings. An empty BaseURL selects
// the deterministic stub gateway, sized by StubResults.
type EvidenceConfig struct {
	BaseURL     string `toml:"base_url"`
	Timeout     string `toml:"timeout"`
	StubResults int    `toml:"stub_results"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *EvidenceConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *EvidenceConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *EvidenceConfig) Merge(overlay *EvidenceConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.StubResults != 0 {
		c.StubResults = overlay.StubResults
	}
}

func (c *EvidenceConfig) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if c.StubResults == 0 {
		c.StubResults = 5
	}
}

func (c *EvidenceConfig) loadEnv() {
	if v := os.Getenv(EnvEvidenceBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvEvidenceTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvEvidenceStubResults); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.StubResults = n
		}
	}
}

func (c *EvidenceConfig) validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.StubResults < 1 {
		return fmt.Errorf("invalid stub_results: %d", c.StubResults)
	}
	return nil
}
