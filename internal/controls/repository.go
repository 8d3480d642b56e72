package controls

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/governet/arbiter/internal/governance"
	"github.com/governet/arbiter/pkg/query"
	"github.com/governet/arbiter/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a control repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "controls"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Table(ctx context.Context) ([]governance.Control, error) {
	q, args := query.NewBuilder(projection, defaultSort).Build()

	table, err := repository.QueryMany(ctx, r.db, q, args, scanControl)
	if err != nil {
		return nil, fmt.Errorf("query controls: %w", err)
	}
	return table, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*governance.Control, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO controls(id, description, attribute, match_value, required_tag, hard)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, description, attribute, match_value, required_tag, hard, enabled`

	var match *string
	if cmd.MatchValue != "" {
		match = &cmd.MatchValue
	}
	args := []any{cmd.ID, cmd.Description, cmd.Attribute, match, cmd.RequiredTag, cmd.Hard}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (governance.Control, error) {
		return repository.QueryOne(ctx, tx, q, args, scanControl)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("control created", "id", c.ID, "hard", c.Hard)
	return &c, nil
}

func (r *repo) Enable(ctx context.Context, id string) (*governance.Control, error) {
	return r.setEnabled(ctx, id, true)
}

func (r *repo) Disable(ctx context.Context, id string) (*governance.Control, error) {
	return r.setEnabled(ctx, id, false)
}

func (r *repo) setEnabled(ctx context.Context, id string, enabled bool) (*governance.Control, error) {
	q := `
		UPDATE controls SET enabled = $1
		WHERE id = $2
		RETURNING id, description, attribute, match_value, required_tag, hard, enabled`

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (governance.Control, error) {
		return repository.QueryOne(ctx, tx, q, []any{enabled, id}, scanControl)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("control enabled flag set", "id", c.ID, "enabled", c.Enabled)
	return &c, nil
}
