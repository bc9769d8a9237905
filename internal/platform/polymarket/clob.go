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

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/polyscout/internal/domain"
)

// ClobClient is the read-only REST client for the Polymarket CLOB (Central
// Limit Order Book) API. It serves market metadata and order-book snapshots;
// none of the endpoints it uses require authentication.
type ClobClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewClobClient creates a new CLOB REST client.
//
// baseURL is the CLOB API root, e.g. "https://clob.polymarket.com".
func NewClobClient(baseURL string, timeout time.Duration) *ClobClient {
	return &ClobClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetMarket returns the CLOB view of a market, keyed by condition ID. The
// response carries the outcome tokens whose order books can be queried.
func (c *ClobClient) GetMarket(ctx context.Context, conditionID string) (APIClobMarket, error) {
	path := fmt.Sprintf("/markets/%s", url.PathEscape(conditionID))

	body, err := c.doGet(ctx, path)
	if err != nil {
		return APIClobMarket{}, fmt.Errorf("polymarket/clob: get market %s: %w", conditionID, err)
	}

	var market APIClobMarket
	if err := json.Unmarshal(body, &market); err != nil {
		return APIClobMarket{}, fmt.Errorf("polymarket/clob: decode market: %w", err)
	}

	return market, nil
}

// GetOrderBook returns the order-book snapshot for one outcome token. Best
// bid and ask are computed by comparing every level; the API's own level
// ordering is not documented and is not relied on.
func (c *ClobClient) GetOrderBook(ctx context.Context, tokenID string) (domain.OrderBook, error) {
	params := url.Values{}
	params.Set("token_id", tokenID)

	body, err := c.doGet(ctx, "/book?"+params.Encode())
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("polymarket/clob: get book for token %s: %w", tokenID, err)
	}

	var apiBook APIBook
	if err := json.Unmarshal(body, &apiBook); err != nil {
		return domain.OrderBook{}, fmt.Errorf("polymarket/clob: decode book: %w", err)
	}

	book, err := apiBook.toDomainBook(tokenID)
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("polymarket/clob: book for token %s: %w", tokenID, err)
	}
	return book, nil
}

// toDomainBook converts the API snapshot, parsing decimal strings and
// computing the best level on each side.
func (b *APIBook) toDomainBook(tokenID string) (domain.OrderBook, error) {
	book := domain.OrderBook{
		TokenID: tokenID,
	}

	for _, lvl := range b.Bids {
		price, err := decimal.NewFromString(lvl.Price)
		if err != nil {
			return domain.OrderBook{}, fmt.Errorf("parse bid price %q: %w", lvl.Price, err)
		}
		size, err := decimal.NewFromString(lvl.Size)
		if err != nil {
			return domain.OrderBook{}, fmt.Errorf("parse bid size %q: %w", lvl.Size, err)
		}
		book.Bids = append(book.Bids, domain.PriceLevel{Price: price, Size: size})
		if book.BestBid == nil || price.GreaterThan(*book.BestBid) {
			p := price
			book.BestBid = &p
		}
	}
	for _, lvl := range b.Asks {
		price, err := decimal.NewFromString(lvl.Price)
		if err != nil {
			return domain.OrderBook{}, fmt.Errorf("parse ask price %q: %w", lvl.Price, err)
		}
		size, err := decimal.NewFromString(lvl.Size)
		if err != nil {
			return domain.OrderBook{}, fmt.Errorf("parse ask size %q: %w", lvl.Size, err)
		}
		book.Asks = append(book.Asks, domain.PriceLevel{Price: price, Size: size})
		if book.BestAsk == nil || price.LessThan(*book.BestAsk) {
			p := price
			book.BestAsk = &p
		}
	}

	if ms, err := strconv.ParseInt(b.Timestamp, 10, 64); err == nil {
		book.Timestamp = time.UnixMilli(ms).UTC()
	} else if ts, err := time.Parse(time.RFC3339, b.Timestamp); err == nil {
		book.Timestamp = ts
	} else {
		book.Timestamp = time.Now().UTC()
	}

	return book, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doGet sends an unauthenticated GET request to the CLOB API.
func (c *ClobClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
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
