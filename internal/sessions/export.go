package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/governet/arbiter/internal/governance"
	"github.com/governet/arbiter/internal/protocol"
)

// Export envelope identity. Consumers key their parsers off these values, so
// they only ever change with a corresponding version bump.
const (
	exportProtocol = "arbiter/decision-export"
	exportVersion  = "1.0"
)

// ExportEnvelope is the stable cross-system record written to blob storage:
// the session, its decision, and the verified trace under a named protocol
// and version.
type ExportEnvelope struct {
	Protocol   string               `json:"protocol"`
	Version    string               `json:"version"`
	ExportedAt time.Time            `json:"exported_at"`
	Session    *Session             `json:"session"`
	Decision   *governance.Decision `json:"decision"`
	Trace      *protocol.Trace      `json:"trace"`
}

// ExportResult describes a completed export.
type ExportResult struct {
	StorageKey   string `json:"storage_key"`
	SizeBytes    int    `json:"size_bytes"`
	Verification string `json:"verification"`
}

// Export writes the session's decision and verified trace to blob storage.
// Only done sessions with a recorded decision are exportable.
func (r *repo) Export(ctx context.Context, id uuid.UUID) (*ExportResult, error) {
	s, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Status != StatusDone || s.Decision == nil {
		return nil, ErrNoDecision
	}

	trace, err := r.Trace(ctx, id)
	if err != nil {
		return nil, err
	}

	envelope := ExportEnvelope{
		Protocol:   exportProtocol,
		Version:    exportVersion,
		ExportedAt: time.Now().UTC(),
		Session:    s,
		Decision:   s.Decision,
		Trace:      trace,
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export envelope: %w", err)
	}

	key := fmt.Sprintf("sessions/%s/export.json", id)
	if err := r.store.Put(ctx, key, data, "application/json"); err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}

	r.logger.Info("session exported", "id", id, "key", key, "bytes", len(data))

	return &ExportResult{
		StorageKey:   key,
		SizeBytes:    len(data),
		Verification: trace.Verification,
	}, nil
}
