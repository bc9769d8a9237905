package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceLevel is a single price+size entry in an order book.
type PriceLevel struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// OrderBook is a full snapshot of bids and asks for one outcome token.
// BestBid and BestAsk are computed by comparing every level rather than
// trusting the upstream ordering, which is undocumented; a nil value means
// that side of the book is empty.
type OrderBook struct {
	TokenID   string           `json:"token_id"`
	Bids      []PriceLevel     `json:"bids"`
	Asks      []PriceLevel     `json:"asks"`
	BestBid   *decimal.Decimal `json:"best_bid,omitempty"`
	BestAsk   *decimal.Decimal `json:"best_ask,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// OutcomeQuote is the best bid/ask pair for a single market outcome.
type OutcomeQuote struct {
	Outcome string           `json:"outcome"`
	TokenID string           `json:"token_id"`
	BestBid *decimal.Decimal `json:"best_bid,omitempty"`
	BestAsk *decimal.Decimal `json:"best_ask,omitempty"`
}

// MarketQuotes bundles the quotes for every outcome of a resolved market.
type MarketQuotes struct {
	ConditionID string         `json:"condition_id"`
	Question    string         `json:"question,omitempty"`
	Quotes      []OutcomeQuote `json:"quotes"`
}
