package topics

import (
	"context"

	"github.com/google/uuid"

	"github.com/governet/arbiter/pkg/pagination"
)

// System defines the public contract for topic domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Topic], error)

	// Active returns every active topic in name order. This is the set a
	// session evaluates.
	Active(ctx context.Context) ([]Topic, error)

	Find(ctx context.Context, id uuid.UUID) (*Topic, error)
	Create(ctx context.Context, cmd CreateCommand) (*Topic, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Topic, error)
	Activate(ctx context.Context, id uuid.UUID) (*Topic, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*Topic, error)
}
