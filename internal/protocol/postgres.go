package protocol

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/governet/arbiter/pkg/repository"
)

const (
	appendAttempts = 3
	appendBackoff  = 50 * time.Millisecond
)

type postgres struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgres creates the production recorder backed by the protocol_events
// table.
func NewPostgres(db *sql.DB, logger *slog.Logger) Recorder {
	return &postgres{
		db:     db,
		logger: logger.With("system", "protocol"),
	}
}

// Append assigns the next sequence number inside a transaction and inserts
// the event. Transient failures retry with exponential backoff; exhaustion
// surfaces ErrAppendExhausted so the session fails rather than continuing
// with a gap in its trail.
func (r *postgres) Append(ctx context.Context, e Entry) (*ProtocolEvent, error) {
	var last error
	for attempt := range appendAttempts {
		if attempt > 0 {
			backoff := appendBackoff << (attempt - 1)
			r.logger.Warn(
				"protocol append retry",
				"session_id", e.SessionID,
				"step", e.Step,
				"attempt", attempt,
				"backoff", backoff,
				"error", last,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		event, err := r.append(ctx, e)
		if err == nil {
			return event, nil
		}
		last = err
	}

	return nil, fmt.Errorf("%w: %v", ErrAppendExhausted, last)
}

func (r *postgres) append(ctx context.Context, e Entry) (*ProtocolEvent, error) {
	inputs, err := encodeRef(e.Inputs)
	if err != nil {
		return nil, fmt.Errorf("encode inputs: %w", err)
	}
	outputs, err := encodeRef(e.Outputs)
	if err != nil {
		return nil, fmt.Errorf("encode outputs: %w", err)
	}

	event, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (ProtocolEvent, error) {
		// MAX(seq)+1 under read committed does not block a concurrent
		// writer; two appends can compute the same seq. The primary key
		// on (session_id, seq) rejects the loser and the retry loop in
		// Append picks up the next number.
		var seq int
		if err := tx.QueryRowContext(
			ctx,
			`SELECT COALESCE(MAX(seq), 0) + 1
			 FROM protocol_events
			 WHERE session_id = $1`,
			e.SessionID,
		).Scan(&seq); err != nil {
			return ProtocolEvent{}, fmt.Errorf("next seq: %w", err)
		}

		q := `
			INSERT INTO protocol_events(session_id, seq, step, actor, inputs, outputs, decision_state)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING session_id, seq, step, actor, inputs, outputs, decision_state, recorded_at`

		args := []any{e.SessionID, seq, e.Step, e.Actor, inputs, outputs, e.DecisionState}
		return repository.QueryOne(ctx, tx, q, args, scanEvent)
	})
	if err != nil {
		return nil, err
	}

	return &event, nil
}

func (r *postgres) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]ProtocolEvent, error) {
	q := `
		SELECT session_id, seq, step, actor, inputs, outputs, decision_state, recorded_at
		FROM protocol_events
		WHERE session_id = $1
		ORDER BY seq`

	events, err := repository.QueryMany(ctx, r.db, q, []any{sessionID}, scanEvent)
	if err != nil {
		return nil, fmt.Errorf("query protocol events: %w", err)
	}
	return events, nil
}

func scanEvent(s repository.Scanner) (ProtocolEvent, error) {
	var (
		e       ProtocolEvent
		inputs  []byte
		outputs []byte
	)

	err := s.Scan(
		&e.SessionID,
		&e.Seq,
		&e.Step,
		&e.Actor,
		&inputs,
		&outputs,
		&e.DecisionState,
		&e.Timestamp,
	)
	e.Inputs = inputs
	e.Outputs = outputs
	return e, err
}
