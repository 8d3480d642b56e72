package topics

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/governet/arbiter/pkg/pagination"
	"github.com/governet/arbiter/pkg/query"
	"github.com/governet/arbiter/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a topic repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "topics"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Topic], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Role")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count topics: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanTopic)
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Active(ctx context.Context) ([]Topic, error) {
	active := true
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("Active", &active).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanTopic)
	if err != nil {
		return nil, fmt.Errorf("query active topics: %w", err)
	}
	return items, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Topic, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	t, err := repository.QueryOne(ctx, r.db, q, args, scanTopic)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &t, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Topic, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO topics(id, name, role, query_template, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, role, query_template, description, active`

	args := []any{uuid.New(), cmd.Name, cmd.Role, cmd.QueryTemplate, cmd.Description}

	t, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Topic, error) {
		return repository.QueryOne(ctx, tx, q, args, scanTopic)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("topic created", "id", t.ID, "name", t.Name)
	return &t, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Topic, error) {
	q := `
		UPDATE topics
		SET name = $1, role = $2, query_template = $3, description = $4
		WHERE id = $5
		RETURNING id, name, role, query_template, description, active`

	args := []any{cmd.Name, cmd.Role, cmd.QueryTemplate, cmd.Description, id}

	t, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Topic, error) {
		return repository.QueryOne(ctx, tx, q, args, scanTopic)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("topic updated", "id", t.ID, "name", t.Name)
	return &t, nil
}

func (r *repo) Activate(ctx context.Context, id uuid.UUID) (*Topic, error) {
	return r.setActive(ctx, id, true)
}

func (r *repo) Deactivate(ctx context.Context, id uuid.UUID) (*Topic, error) {
	return r.setActive(ctx, id, false)
}

func (r *repo) setActive(ctx context.Context, id uuid.UUID, active bool) (*Topic, error) {
	q := `
		UPDATE topics SET active = $1
		WHERE id = $2
		RETURNING id, name, role, query_template, description, active`

	t, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Topic, error) {
		return repository.QueryOne(ctx, tx, q, []any{active, id}, scanTopic)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("topic active flag set", "id", t.ID, "name", t.Name, "active", t.Active)
	return &t, nil
}
