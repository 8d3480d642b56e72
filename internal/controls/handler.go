package controls

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/governet/arbiter/internal/governance"
	"github.com/governet/arbiter/pkg/handlers"
	"github.com/governet/arbiter/pkg/routes"
)

// Handler provides HTTP endpoints for control operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "controls"),
	}
}

// Routes returns the route group definition for control endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/controls",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "POST", Pattern: "/{id}/enable", Handler: h.Enable},
			{Method: "POST", Pattern: "/{id}/disable", Handler: h.Disable},
		},
	}
}

// List returns the full control table.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	table, err := h.sys.Table(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, table)
}

// Create registers a new control from a JSON body.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	c, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, c)
}

// Enable turns a control back on for future sessions.
func (h *Handler) Enable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, h.sys.Enable)
}

// Disable excludes a control from future sessions without deleting its
// registration.
func (h *Handler) Disable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, h.sys.Disable)
}

func (h *Handler) setEnabled(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, string) (*governance.Control, error),
) {
	id := r.PathValue("id")
	if id == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	c, err := op(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}
