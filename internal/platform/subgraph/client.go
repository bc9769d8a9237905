// Package subgraph is a GraphQL client for a Polymarket markets subgraph
// (e.g. a Goldsky-hosted index). It is the GraphQL-shaped candidate in the
// fallback list: same market records as the Gamma REST API, different wire
// protocol.
package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/polyscout/internal/domain"
)

// defaultPageLimit bounds how many entities a window query asks for when no
// page limit is configured.
const defaultPageLimit = 10000

// Client is a GraphQL client for a markets subgraph endpoint.
type Client struct {
	graphqlURL string
	apiKey     string
	pageLimit  int
	httpClient *http.Client
}

// NewClient creates a new subgraph GraphQL client.
//
// graphqlURL is the subgraph endpoint, e.g.
// "https://api.goldsky.com/api/public/.../subgraphs/polymarket-markets/gn".
// pageLimit caps how many entities a window query requests; values <= 0 fall
// back to a default large enough for the widest search window.
func NewClient(graphqlURL, apiKey string, timeout time.Duration, pageLimit int) *Client {
	if pageLimit <= 0 {
		pageLimit = defaultPageLimit
	}
	return &Client{
		graphqlURL: graphqlURL,
		apiKey:     strings.TrimSpace(apiKey),
		pageLimit:  pageLimit,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name identifies this candidate endpoint in logs and failure reports.
func (c *Client) Name() string {
	return "subgraph " + c.graphqlURL
}

// graphqlRequest is the standard GraphQL request envelope.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlResponse is the standard GraphQL response envelope.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// apiMarket is one market entity as the subgraph returns it. The subgraph
// does not index the Gamma UI id, so resolved records from this source carry
// only condition ID and slug.
type apiMarket struct {
	ConditionID       string `json:"conditionId"`
	Slug              string `json:"slug"`
	Question          string `json:"question"`
	CreationTimestamp string `json:"creationTimestamp"`
}

// FetchSince queries markets created at or after the given time.
func (c *Client) FetchSince(ctx context.Context, since time.Time) ([]domain.Market, error) {
	query := `
		query RecentMarkets($since: BigInt!, $first: Int!) {
			markets(
				first: $first
				orderBy: creationTimestamp
				orderDirection: desc
				where: { creationTimestamp_gte: $since }
			) {
				conditionId
				slug
				question
				creationTimestamp
			}
		}
	`

	variables := map[string]any{
		"since": fmt.Sprintf("%d", since.Unix()),
		"first": c.pageLimit,
	}

	return c.fetchMarkets(ctx, query, variables)
}

// FetchLatest queries the newest limit markets regardless of creation time.
func (c *Client) FetchLatest(ctx context.Context, limit int) ([]domain.Market, error) {
	query := `
		query LatestMarkets($first: Int!) {
			markets(
				first: $first
				orderBy: creationTimestamp
				orderDirection: desc
			) {
				conditionId
				slug
				question
				creationTimestamp
			}
		}
	`

	variables := map[string]any{
		"first": limit,
	}

	return c.fetchMarkets(ctx, query, variables)
}

func (c *Client) fetchMarkets(ctx context.Context, query string, variables map[string]any) ([]domain.Market, error) {
	respData, err := c.doQuery(ctx, query, variables)
	if err != nil {
		return nil, fmt.Errorf("subgraph: fetch markets: %w", err)
	}

	var result struct {
		Markets []apiMarket `json:"markets"`
	}
	if err := json.Unmarshal(respData, &result); err != nil {
		return nil, fmt.Errorf("subgraph: decode markets: %w", err)
	}

	markets := make([]domain.Market, 0, len(result.Markets))
	for _, m := range result.Markets {
		dm := domain.Market{
			ConditionID: m.ConditionID,
			Slug:        m.Slug,
			Question:    m.Question,
		}
		if ts, err := strconv.ParseInt(m.CreationTimestamp, 10, 64); err == nil {
			dm.CreatedAt = time.Unix(ts, 0).UTC()
		}
		markets = append(markets, dm)
	}

	return markets, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doQuery executes a GraphQL query against the subgraph endpoint and returns
// the raw "data" field from the response.
func (c *Client) doQuery(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	reqBody := graphqlRequest{
		Query:     query,
		Variables: variables,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return nil, fmt.Errorf("decode graphql response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", gqlResp.Errors[0].Message)
	}

	return gqlResp.Data, nil
}
