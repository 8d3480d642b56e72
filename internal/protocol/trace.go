package protocol

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Trace is the verifiable form of a session's audit trail: the ordered
// events plus a SHA-256 hash over their canonical serialization. Consumers
// can recompute the hash to detect tampering or truncation.
type Trace struct {
	SessionID    uuid.UUID       `json:"session_id"`
	Events       []ProtocolEvent `json:"events"`
	Verification string          `json:"verification"`
}

// NewTrace builds a verified trace from ordered events.
func NewTrace(sessionID uuid.UUID, events []ProtocolEvent) (*Trace, error) {
	hash, err := hashEvents(events)
	if err != nil {
		return nil, err
	}

	return &Trace{
		SessionID:    sessionID,
		Events:       events,
		Verification: hash,
	}, nil
}

// Verify recomputes the event hash and compares it to the recorded
// verification value.
func (t *Trace) Verify() bool {
	hash, err := hashEvents(t.Events)
	return err == nil && hash == t.Verification
}

func hashEvents(events []ProtocolEvent) (string, error) {
	h := sha256.New()
	for _, e := range events {
		encoded, err := json.Marshal(e)
		if err != nil {
			return "", fmt.Errorf("serialize event %d: %w", e.Seq, err)
		}
		h.Write(encoded)
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
