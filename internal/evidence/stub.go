package evidence

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/governet/arbiter/internal/governance"
)

type stub struct {
	results int
}

// NewStub creates a gateway that fabricates deterministic evidence for any
// query. It backs local runs when no retrieval endpoint is configured.
func NewStub(results int) Gateway {
	if results <= 0 {
		results = 3
	}
	return &stub{results: results}
}

func (s *stub) Query(_ context.Context, text string, topK int) ([]governance.Evidence, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}

	n := s.results
	if topK > 0 && topK < n {
		n = topK
	}

	items := make([]governance.Evidence, n)
	for i := range items {
		items[i] = governance.Evidence{
			Title:   fmt.Sprintf("Reference %d: %s", i+1, truncate(text, 60)),
			URI:     fmt.Sprintf("stub://evidence/%d", i+1),
			Snippet: fmt.Sprintf("Stubbed excerpt %d for query %q.", i+1, truncate(text, 120)),
			Source:  "stub",
		}
	}
	return items, nil
}

// truncate trims s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
