package formatting_test

import (
	"errors"
	"testing"

	"github.com/governet/arbiter/pkg/formatting"
)

type payload struct {
	Status string  `json:"status"`
	Score  float64 `json:"score"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    payload
		wantErr bool
	}{
		{
			name:    "plain json",
			content: `{"status":"ok","score":0.9}`,
			want:    payload{Status: "ok", Score: 0.9},
		},
		{
			name:    "json fence",
			content: "```json\n{\"status\":\"ok\",\"score\":0.5}\n```",
			want:    payload{Status: "ok", Score: 0.5},
		},
		{
			name:    "bare fence with surrounding prose",
			content: "Here is the result:\n```\n{\"status\":\"revise\"}\n```\nLet me know.",
			want:    payload{Status: "revise"},
		},
		{
			name:    "not json",
			content: "the assessment looks fine to me",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.Parse[payload](tt.content)
			if tt.wantErr {
				if !errors.Is(err, formatting.ErrParseFailed) {
					t.Fatalf("err = %v, want ErrParseFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
