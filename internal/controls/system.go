package controls

import (
	"context"

	"github.com/governet/arbiter/internal/governance"
)

// System defines the public contract for control domain operations.
type System interface {
	Handler() *Handler

	// Table returns the full control table in id order, enabled and disabled
	// rows alike. The gate engine filters to enabled controls itself.
	Table(ctx context.Context) ([]governance.Control, error)

	Create(ctx context.Context, cmd CreateCommand) (*governance.Control, error)
	Enable(ctx context.Context, id string) (*governance.Control, error)
	Disable(ctx context.Context, id string) (*governance.Control, error)
}
