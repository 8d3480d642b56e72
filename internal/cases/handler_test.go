package cases_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/governet/arbiter/internal/cases"
	"github.com/governet/arbiter/pkg/pagination"
)

type fakeSystem struct {
	cases map[uuid.UUID]*cases.Case
	err   error
}

func (f *fakeSystem) Handler() *cases.Handler { return nil }

func (f *fakeSystem) List(
	_ context.Context,
	page pagination.PageRequest,
	_ cases.Filters,
) (*pagination.PageResult[cases.Case], error) {
	if f.err != nil {
		return nil, f.err
	}

	items := make([]cases.Case, 0, len(f.cases))
	for _, c := range f.cases {
		items = append(items, *c)
	}
	result := pagination.NewPageResult(items, len(items), page.Page, page.PageSize)
	return &result, nil
}

func (f *fakeSystem) Find(_ context.Context, id uuid.UUID) (*cases.Case, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.cases[id]
	if !ok {
		return nil, cases.ErrNotFound
	}
	return c, nil
}

func (f *fakeSystem) Create(_ context.Context, cmd cases.CreateCommand) (*cases.Case, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	c := &cases.Case{
		ID:         uuid.New(),
		Title:      cmd.Title,
		Context:    cmd.Context,
		Attributes: cmd.Attributes,
	}
	f.cases[c.ID] = c
	return c, nil
}

func (f *fakeSystem) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.cases[id]; !ok {
		return cases.ErrNotFound
	}
	delete(f.cases, id)
	return nil
}

func newHandler(sys cases.System) *cases.Handler {
	logger := slog.New(slog.DiscardHandler)
	return cases.NewHandler(sys, logger, pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
}

func serve(h *cases.Handler, r *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	return w
}

func TestHandlerCreate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid case created",
			body:       `{"title":"Corridor sensors","context":"Deploy ALPR along Main St","attributes":{"sensors":{"alpr":true}}}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing title rejected",
			body:       `{"context":"Deploy sensors"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json rejected",
			body:       `{"title":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &fakeSystem{cases: map[uuid.UUID]*cases.Case{}}
			h := newHandler(sys)

			r := httptest.NewRequest("POST", "/cases", strings.NewReader(tt.body))
			w := serve(h, r)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestHandlerFind(t *testing.T) {
	id := uuid.New()
	sys := &fakeSystem{cases: map[uuid.UUID]*cases.Case{
		id: {ID: id, Title: "Corridor sensors", Context: "ctx"},
	}}
	h := newHandler(sys)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"existing case", "/cases/" + id.String(), http.StatusOK},
		{"unknown case", "/cases/" + uuid.NewString(), http.StatusNotFound},
		{"invalid uuid", "/cases/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(h, httptest.NewRequest("GET", tt.path, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandlerList(t *testing.T) {
	id := uuid.New()
	sys := &fakeSystem{cases: map[uuid.UUID]*cases.Case{
		id: {ID: id, Title: "Corridor sensors", Context: "ctx"},
	}}
	h := newHandler(sys)

	w := serve(h, httptest.NewRequest("GET", "/cases?page=1&page_size=10", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var result pagination.PageResult[cases.Case]
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("total = %d, want 1", result.Total)
	}
}

func TestHandlerDelete(t *testing.T) {
	id := uuid.New()
	sys := &fakeSystem{cases: map[uuid.UUID]*cases.Case{
		id: {ID: id, Title: "Corridor sensors", Context: "ctx"},
	}}
	h := newHandler(sys)

	w := serve(h, httptest.NewRequest("DELETE", "/cases/"+id.String(), nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}

	w = serve(h, httptest.NewRequest("DELETE", "/cases/"+id.String(), nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
