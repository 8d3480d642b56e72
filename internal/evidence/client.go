package evidence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/governet/arbiter/internal/governance"
)

const defaultTimeout = 10 * time.Second

type client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a gateway client for the retrieval endpoint at baseURL.
// A non-positive timeout falls back to the default.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) Gateway {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("system", "evidence"),
	}
}

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type queryResponse struct {
	Results []governance.Evidence `json:"results"`
}

func (c *client) Query(ctx context.Context, text string, topK int) ([]governance.Evidence, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}

	body, err := json.Marshal(queryRequest{Query: text, TopK: topK})
	if err != nil {
		return nil, fmt.Errorf("encode evidence query: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/query",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("build evidence request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var parsed queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	c.logger.Debug("evidence retrieved", "query", text, "results", len(parsed.Results))
	return parsed.Results, nil
}
