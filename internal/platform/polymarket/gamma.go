package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alanyoungcy/polyscout/internal/domain"
)

// defaultPageLimit bounds how many records a single window query asks for
// when no page limit is configured. Window escalation scans the whole widened
// window, so the bound must comfortably exceed a week of market creation.
const defaultPageLimit = 10000

// GammaClient is the REST client for the Polymarket Gamma API, which provides
// market discovery and metadata. It implements the market-source contract used
// by the fallback fetcher.
type GammaClient struct {
	baseURL    string
	pageLimit  int
	httpClient *http.Client
}

// NewGammaClient creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
// pageLimit caps how many records a window query requests; values <= 0 fall
// back to a default large enough for the widest search window.
func NewGammaClient(baseURL string, timeout time.Duration, pageLimit int) *GammaClient {
	if pageLimit <= 0 {
		pageLimit = defaultPageLimit
	}
	return &GammaClient{
		baseURL:   baseURL,
		pageLimit: pageLimit,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name identifies this candidate endpoint in logs and failure reports.
func (g *GammaClient) Name() string {
	return "gamma " + g.baseURL
}

// FetchSince returns markets created at or after the given time, newest first.
func (g *GammaClient) FetchSince(ctx context.Context, since time.Time) ([]domain.Market, error) {
	params := url.Values{}
	params.Set("created_after", since.UTC().Format(time.RFC3339))
	params.Set("order", "id")
	params.Set("ascending", "false")
	params.Set("limit", strconv.Itoa(g.pageLimit))

	return g.fetchMarkets(ctx, "/markets?"+params.Encode())
}

// FetchLatest returns the newest limit markets regardless of creation time.
func (g *GammaClient) FetchLatest(ctx context.Context, limit int) ([]domain.Market, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("order", "id")
	params.Set("ascending", "false")

	return g.fetchMarkets(ctx, "/markets?"+params.Encode())
}

// fetchMarkets issues the GET and normalizes the payload. Gamma has returned
// both a bare array and a {"data": [...]} envelope across API revisions, so
// both shapes are accepted.
func (g *GammaClient) fetchMarkets(ctx context.Context, path string) ([]domain.Market, error) {
	body, err := g.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: get markets: %w", err)
	}

	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		// The envelope must actually carry a "data" key: a 2xx object without
		// one (an error body, say) is a schema mismatch, not an empty result.
		var envelope map[string]json.RawMessage
		if envErr := json.Unmarshal(body, &envelope); envErr != nil {
			return nil, fmt.Errorf("polymarket/gamma: decode markets: %w", err)
		}
		data, ok := envelope["data"]
		if !ok {
			return nil, fmt.Errorf("polymarket/gamma: unexpected payload shape: no markets array")
		}
		if err := json.Unmarshal(data, &apiMarkets); err != nil {
			return nil, fmt.Errorf("polymarket/gamma: decode markets envelope: %w", err)
		}
	}

	markets := make([]domain.Market, 0, len(apiMarkets))
	for i := range apiMarkets {
		markets = append(markets, apiMarkets[i].ToDomainMarket())
	}

	return markets, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doGet sends an unauthenticated GET request to the Gamma API.
func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus rejects non-2xx status codes. Every status is reported as a
// plain transport failure; the resolution-level not-found sentinel is reserved
// for token lookups that genuinely matched nothing.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
}
