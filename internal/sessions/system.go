package sessions

import (
	"context"

	"github.com/google/uuid"

	"github.com/governet/arbiter/internal/protocol"
	"github.com/governet/arbiter/pkg/pagination"
)

// System defines the public contract for session domain operations.
type System interface {
	Handler() *Handler

	// Run executes a full review session against the identified case and
	// returns the completed session with its decision.
	Run(ctx context.Context, caseID uuid.UUID) (*RunResult, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Session], error)

	Find(ctx context.Context, id uuid.UUID) (*Session, error)

	// Trace returns the session's ordered protocol events with their
	// verification hash.
	Trace(ctx context.Context, id uuid.UUID) (*protocol.Trace, error)

	// Export serializes the decision and verified trace to blob storage and
	// returns the export record.
	Export(ctx context.Context, id uuid.UUID) (*ExportResult, error)
}
