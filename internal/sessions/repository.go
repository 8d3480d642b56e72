package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/governet/arbiter/internal/cases"
	"github.com/governet/arbiter/internal/controls"
	"github.com/governet/arbiter/internal/engine"
	"github.com/governet/arbiter/internal/evidence"
	"github.com/governet/arbiter/internal/governance"
	"github.com/governet/arbiter/internal/protocol"
	"github.com/governet/arbiter/internal/topics"
	"github.com/governet/arbiter/pkg/pagination"
	"github.com/governet/arbiter/pkg/query"
	"github.com/governet/arbiter/pkg/repository"
	"github.com/governet/arbiter/pkg/storage"
)

type repo struct {
	db         *sql.DB
	cases      cases.System
	topics     topics.System
	controls   controls.System
	engine     *engine.Runtime
	store      storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a session repository implementing the System interface.
func New(
	db *sql.DB,
	caseSys cases.System,
	topicSys topics.System,
	controlSys controls.System,
	rt *engine.Runtime,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		cases:      caseSys,
		topics:     topicSys,
		controls:   controlSys,
		engine:     rt,
		store:      store,
		logger:     logger.With("system", "sessions"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

// Run drives a complete review: load the case and governance inputs, open a
// session row, bracket the orchestrator with session-start and session-end
// protocol events, and persist the outcome. Failure is recorded in data —
// status, failure kind, and a terminal event — before the error returns.
func (r *repo) Run(ctx context.Context, caseID uuid.UUID) (*RunResult, error) {
	c, err := r.cases.Find(ctx, caseID)
	if err != nil {
		return nil, err
	}

	topicList, err := r.topics.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active topics: %w", err)
	}

	table, err := r.controls.Table(ctx)
	if err != nil {
		return nil, fmt.Errorf("load control table: %w", err)
	}

	session, err := r.create(ctx, caseID)
	if err != nil {
		return nil, err
	}

	if _, err := r.engine.Recorder.Append(ctx, protocol.Entry{
		SessionID: session.ID,
		Step:      protocol.StepSessionStarted,
		Actor:     "orchestrator",
		Inputs: map[string]any{
			"case_id": caseID,
			"topics":  len(topicList),
		},
	}); err != nil {
		return nil, r.fail(ctx, session.ID, FailureRecorder, err)
	}

	decision, err := engine.Execute(ctx, r.engine, session.ID, c, topicList, table)
	if err != nil {
		return nil, r.fail(ctx, session.ID, classifyFailure(err), err)
	}

	if _, err := r.engine.Recorder.Append(ctx, protocol.Entry{
		SessionID:     session.ID,
		Step:          protocol.StepSessionDone,
		Actor:         "orchestrator",
		Outputs:       map[string]any{"overall_decision": decision.OverallDecision},
		DecisionState: string(decision.OverallDecision),
	}); err != nil {
		return nil, r.fail(ctx, session.ID, FailureRecorder, err)
	}

	completed, err := r.complete(ctx, session.ID, decision)
	if err != nil {
		return nil, err
	}

	r.logger.Info(
		"session completed",
		"id", session.ID,
		"case_id", caseID,
		"overall", decision.OverallDecision,
	)

	return &RunResult{Session: completed, Decision: decision}, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Session], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, defaultSort)
	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSession)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Session, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanSession)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &s, nil
}

func (r *repo) Trace(ctx context.Context, id uuid.UUID) (*protocol.Trace, error) {
	s, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	events, err := r.engine.Recorder.ListBySession(ctx, s.ID)
	if err != nil {
		return nil, err
	}

	return protocol.NewTrace(s.ID, events)
}

func (r *repo) create(ctx context.Context, caseID uuid.UUID) (*Session, error) {
	q := `
		INSERT INTO sessions(id, case_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, case_id, status, failure_kind, decision, started_at, completed_at`

	args := []any{uuid.New(), caseID, StatusRunning}

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Session, error) {
		return repository.QueryOne(ctx, tx, q, args, scanSession)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("session started", "id", s.ID, "case_id", caseID)
	return &s, nil
}

func (r *repo) complete(ctx context.Context, id uuid.UUID, decision *governance.Decision) (*Session, error) {
	encoded, err := json.Marshal(decision)
	if err != nil {
		return nil, fmt.Errorf("encode decision: %w", err)
	}

	q := `
		UPDATE sessions
		SET status = $1, decision = $2, completed_at = now()
		WHERE id = $3
		RETURNING id, case_id, status, failure_kind, decision, started_at, completed_at`

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Session, error) {
		return repository.QueryOne(ctx, tx, q, []any{StatusDone, encoded, id}, scanSession)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &s, nil
}

// fail marks the session failed and appends the terminal failure event.
// Both writes use a cancellation-free context so a cancelled run still
// leaves an explained session behind. The returned error wraps ErrRunFailed
// around the original cause.
func (r *repo) fail(ctx context.Context, id uuid.UUID, kind FailureKind, cause error) error {
	persistCtx := context.WithoutCancel(ctx)

	if _, err := r.engine.Recorder.Append(persistCtx, protocol.Entry{
		SessionID: id,
		Step:      protocol.StepSessionFailed,
		Actor:     "orchestrator",
		Outputs: map[string]any{
			"failure_kind": kind,
			"error":        cause.Error(),
		},
	}); err != nil {
		r.logger.Error("failure event append failed", "id", id, "error", err)
	}

	q := `
		UPDATE sessions
		SET status = $1, failure_kind = $2, completed_at = now()
		WHERE id = $3
		RETURNING id, case_id, status, failure_kind, decision, started_at, completed_at`

	_, err := repository.WithTx(persistCtx, r.db, func(tx *sql.Tx) (Session, error) {
		return repository.QueryOne(persistCtx, tx, q, []any{StatusFailed, kind, id}, scanSession)
	})
	if err != nil {
		r.logger.Error("session failure update failed", "id", id, "error", err)
	}

	r.logger.Warn("session failed", "id", id, "kind", kind, "error", cause)
	return fmt.Errorf("%w (%s): %w", ErrRunFailed, kind, cause)
}

func classifyFailure(err error) FailureKind {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return FailureCancelled
	case errors.Is(err, protocol.ErrAppendExhausted):
		return FailureRecorder
	case errors.Is(err, evidence.ErrUnavailable) || errors.Is(err, evidence.ErrBadResponse):
		return FailureGateway
	default:
		return FailureReasoning
	}
}
