package subgraph

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
	"golang.org/x/sync/singleflight"
)

const (
	// MaxRetries bounds attempts per request.
	MaxRetries = 3
	// InitialRetryDelay is the backoff before the first retry; it doubles
	// each attempt.
	InitialRetryDelay = 500 * time.Millisecond
	// ChunkSize bounds the number of pairs per query.
	ChunkSize = 10
)

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors,omitempty"`
}

// Client executes signed GraphQL queries against per-chain subgraph
// endpoints. Identical in-flight queries are coalesced into one network
// call; the entry is dropped once the call settles, so this is request
// coalescing, not result caching.
type Client struct {
	httpClient *http.Client
	gateway    string
	apiKey     string
	endpoints  map[string]map[uint64]Endpoint

	// Policy is consulted per request; replaceable in tests.
	Policy RetryPolicy

	group singleflight.Group
}

func NewClient(gateway, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		gateway:    strings.TrimSuffix(gateway, "/"),
		apiKey:     apiKey,
		endpoints:  copyDefaultEndpoints(),
		Policy:     DefaultRetryPolicy(),
	}
}

// Query runs one GraphQL query with retry and in-flight de-duplication.
// The coalescing key is (chainID, subgraphUrl, serialized variables).
func (c *Client) Query(ctx context.Context, chainID uint64, subgraphURL, query string, variables map[string]interface{}) (json.RawMessage, error) {
	serialized, err := json.Marshal(variables)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}
	key := fmt.Sprintf("%d:%s:%s", chainID, subgraphURL, serialized)

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		var data json.RawMessage
		err := c.Policy.Do(ctx, func() error {
			d, err := c.post(ctx, subgraphURL, query, variables)
			if err != nil {
				return err
			}
			data = d
			return nil
		})
		return data, err
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

func (c *Client) post(ctx context.Context, subgraphURL, query string, variables map[string]interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, tracerr.Wrap(err)
	}

	url := c.gateway + "/" + subgraphURL
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, tracerr.Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &transientError{err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transientError{err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &transientError{err: fmt.Errorf("subgraph returned status %d: %s", resp.StatusCode, raw)}
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(raw, &gqlResp); err != nil {
		return nil, tracerr.Wrap(err)
	}
	if len(gqlResp.Errors) > 0 {
		msgs := make([]string, 0, len(gqlResp.Errors))
		for _, e := range gqlResp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("graphql error: %s", strings.Join(msgs, "; "))
	}

	return gqlResp.Data, nil
}
