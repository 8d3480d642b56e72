package sessions_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/governet/arbiter/internal/cases"
	"github.com/governet/arbiter/internal/governance"
	"github.com/governet/arbiter/internal/protocol"
	"github.com/governet/arbiter/internal/sessions"
	"github.com/governet/arbiter/pkg/pagination"
)

type fakeSystem struct {
	sessions map[uuid.UUID]*sessions.Session
	runErr   error
}

func (f *fakeSystem) Handler() *sessions.Handler { return nil }

func (f *fakeSystem) Run(_ context.Context, caseID uuid.UUID) (*sessions.RunResult, error) {
	if f.runErr != nil {
		return nil, f.runErr
	}

	decision := &governance.Decision{
		CaseID:          caseID.String(),
		OverallDecision: governance.VerdictGo,
	}
	s := &sessions.Session{
		ID:       uuid.New(),
		CaseID:   caseID,
		Status:   sessions.StatusDone,
		Decision: decision,
	}
	f.sessions[s.ID] = s
	return &sessions.RunResult{Session: s, Decision: decision}, nil
}

func (f *fakeSystem) List(
	_ context.Context,
	page pagination.PageRequest,
	_ sessions.Filters,
) (*pagination.PageResult[sessions.Session], error) {
	items := make([]sessions.Session, 0, len(f.sessions))
	for _, s := range f.sessions {
		items = append(items, *s)
	}
	result := pagination.NewPageResult(items, len(items), page.Page, page.PageSize)
	return &result, nil
}

func (f *fakeSystem) Find(_ context.Context, id uuid.UUID) (*sessions.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, sessions.ErrNotFound
	}
	return s, nil
}

func (f *fakeSystem) Trace(_ context.Context, id uuid.UUID) (*protocol.Trace, error) {
	if _, ok := f.sessions[id]; !ok {
		return nil, sessions.ErrNotFound
	}
	return protocol.NewTrace(id, nil)
}

func (f *fakeSystem) Export(_ context.Context, id uuid.UUID) (*sessions.ExportResult, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, sessions.ErrNotFound
	}
	if s.Status != sessions.StatusDone {
		return nil, sessions.ErrNoDecision
	}
	return &sessions.ExportResult{StorageKey: "sessions/" + id.String() + "/export.json"}, nil
}

func newHandler(sys sessions.System) *sessions.Handler {
	return sessions.NewHandler(
		sys,
		slog.New(slog.DiscardHandler),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
}

func serve(h *sessions.Handler, r *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	return w
}

func TestRoutesRegisterWithoutConflict(t *testing.T) {
	id := uuid.New()
	sys := &fakeSystem{sessions: map[uuid.UUID]*sessions.Session{
		id: {ID: id, Status: sessions.StatusDone},
	}}
	h := newHandler(sys)

	// Registering every route on one mux must not panic: the run and
	// export patterns share their wildcard position, so neither can
	// shadow the other.
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
	}{
		{name: "run", method: "POST", target: "/sessions/" + uuid.NewString() + "/run", wantStatus: http.StatusOK},
		{name: "export", method: "POST", target: "/sessions/" + id.String() + "/export", wantStatus: http.StatusCreated},
		{name: "trace", method: "GET", target: "/sessions/" + id.String() + "/trace", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestHandlerRun(t *testing.T) {
	tests := []struct {
		name       string
		caseID     string
		runErr     error
		wantStatus int
	}{
		{
			name:       "successful run",
			caseID:     uuid.NewString(),
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown case",
			caseID:     uuid.NewString(),
			runErr:     cases.ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid case id",
			caseID:     "not-a-uuid",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &fakeSystem{sessions: map[uuid.UUID]*sessions.Session{}, runErr: tt.runErr}
			h := newHandler(sys)

			w := serve(h, httptest.NewRequest("POST", "/sessions/"+tt.caseID+"/run", nil))
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				var result sessions.RunResult
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if result.Decision == nil || result.Decision.OverallDecision != governance.VerdictGo {
					t.Errorf("decision = %+v", result.Decision)
				}
			}
		})
	}
}

func TestHandlerTrace(t *testing.T) {
	id := uuid.New()
	sys := &fakeSystem{sessions: map[uuid.UUID]*sessions.Session{
		id: {ID: id, Status: sessions.StatusDone},
	}}
	h := newHandler(sys)

	w := serve(h, httptest.NewRequest("GET", "/sessions/"+id.String()+"/trace", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var trace protocol.Trace
	if err := json.NewDecoder(w.Body).Decode(&trace); err != nil {
		t.Fatalf("decode trace: %v", err)
	}
	if trace.SessionID != id {
		t.Errorf("session_id = %s, want %s", trace.SessionID, id)
	}
	if trace.Verification == "" {
		t.Error("missing verification hash")
	}

	w = serve(h, httptest.NewRequest("GET", "/sessions/"+uuid.NewString()+"/trace", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHandlerExport(t *testing.T) {
	done := uuid.New()
	running := uuid.New()
	sys := &fakeSystem{sessions: map[uuid.UUID]*sessions.Session{
		done:    {ID: done, Status: sessions.StatusDone},
		running: {ID: running, Status: sessions.StatusRunning},
	}}
	h := newHandler(sys)

	w := serve(h, httptest.NewRequest("POST", "/sessions/"+done.String()+"/export", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	w = serve(h, httptest.NewRequest("POST", "/sessions/"+running.String()+"/export", nil))
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d for session without decision", w.Code, http.StatusConflict)
	}
}
