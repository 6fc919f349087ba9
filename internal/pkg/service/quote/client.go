package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hermeznetwork/tracerr"

	"github.com/dustsweep/dustnode/internal/pkg/model"
)

const (
	quotePath    = "/sor/quote/v2"
	assemblePath = "/sor/assemble"
)

// APIError is an aggregator error payload. Detail may carry a structured
// list of unsellable token addresses, recovered by ParseUnsellable.
type APIError struct {
	StatusCode int    `json:"-"`
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("aggregator error (status %d): %s", e.StatusCode, e.Detail)
}

// Client talks to the swap aggregator's smart order router API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// Quote requests a swap path for the given inputs; the returned PathID
// correlates the later assemble call.
func (c *Client) Quote(ctx context.Context, req model.QuoteRequest) (*model.QuoteResponse, error) {
	var resp model.QuoteResponse
	if err := c.post(ctx, quotePath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Assemble turns a quoted path into a sendable transaction, simulating it
// when req.Simulate is set.
func (c *Client) Assemble(ctx context.Context, req model.ExecuteRequest) (*model.ExecuteResponse, error) {
	var resp model.ExecuteResponse
	if err := c.post(ctx, assemblePath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, dst interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return tracerr.Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return tracerr.Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return tracerr.Wrap(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return tracerr.Wrap(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(payload, apiErr); err != nil || apiErr.Detail == "" {
			apiErr.Detail = string(payload)
		}
		return apiErr
	}

	return json.Unmarshal(payload, dst)
}
