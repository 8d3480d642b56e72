package evidence_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/governet/arbiter/internal/evidence"
)

func TestClientQuery(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		query   string
		wantLen int
		wantErr error
	}{
		{
			name: "results decoded",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/query" {
					t.Errorf("path = %q, want /query", r.URL.Path)
				}
				w.Write([]byte(`{"results":[
					{"title":"ALPR retention guidance","uri":"corpus://1","snippet":"...","source":"corpus"},
					{"title":"CJIS security policy","uri":"corpus://2","snippet":"...","source":"corpus"}
				]}`))
			},
			query:   "alpr retention",
			wantLen: 2,
		},
		{
			name: "empty result set is not an error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"results":[]}`))
			},
			query:   "nothing indexed",
			wantLen: 0,
		},
		{
			name: "server error maps to unavailable",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			query:   "alpr retention",
			wantErr: evidence.ErrUnavailable,
		},
		{
			name: "malformed body maps to bad response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"results":`))
			},
			query:   "alpr retention",
			wantErr: evidence.ErrBadResponse,
		},
		{
			name:    "empty query rejected before transport",
			handler: func(w http.ResponseWriter, r *http.Request) { t.Error("request sent") },
			query:   "  ",
			wantErr: evidence.ErrEmptyQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			gw := evidence.NewClient(srv.URL, time.Second, logger)
			results, err := gw.Query(context.Background(), tt.query, 5)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(results) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(results), tt.wantLen)
			}
		})
	}
}

func TestClientQueryTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Outlast the client timeout, then return normally so Close
		// can reap the connection.
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	gw := evidence.NewClient(srv.URL, 20*time.Millisecond, slog.New(slog.DiscardHandler))
	_, err := gw.Query(context.Background(), "slow corpus", 3)
	if !errors.Is(err, evidence.ErrUnavailable) {
		t.Fatalf("err = %v, want %v", err, evidence.ErrUnavailable)
	}
}

func TestStubRespectsTopK(t *testing.T) {
	gw := evidence.NewStub(5)

	results, err := gw.Query(context.Background(), "site viability", 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("len = %d, want 2", len(results))
	}
	for _, e := range results {
		if e.Source != "stub" {
			t.Errorf("source = %q, want stub", e.Source)
		}
	}
}

func TestStubTruncatesOnRuneBoundary(t *testing.T) {
	// Long enough to exceed both truncation limits, entirely multi-byte.
	query := strings.Repeat("Überwachungskamera für öffentliche Straßen ", 4)

	gw := evidence.NewStub(1)
	results, err := gw.Query(context.Background(), query, 1)
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	for _, e := range results {
		if !utf8.ValidString(e.Title) {
			t.Errorf("title is not valid UTF-8: %q", e.Title)
		}
		if !utf8.ValidString(e.Snippet) {
			t.Errorf("snippet is not valid UTF-8: %q", e.Snippet)
		}
	}
}
