package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/polyscout/internal/domain"
)

// flexString unmarshals from a JSON string or number so Gamma API responses
// work whether "id" is sent as "550868" or 550868.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// --------------------------------------------------------------------------
// Gamma API DTOs
// --------------------------------------------------------------------------

// APIMarket represents a market as returned by the Polymarket Gamma API.
// Gamma uses camelCase field names and encodes several list fields as
// JSON-in-a-string (outcomes, clobTokenIds).
type APIMarket struct {
	ID            flexString `json:"id"`
	Question      string     `json:"question"`
	ConditionID   string     `json:"conditionId"`
	Slug          string     `json:"slug"`
	Active        flexBool   `json:"active"`
	Closed        bool       `json:"closed"`
	Outcomes      string     `json:"outcomes"`      // JSON-encoded: e.g. "[\"Yes\",\"No\"]"
	ClobTokenIDs  string     `json:"clobTokenIds"`  // JSON-encoded: e.g. "[\"123\",\"456\"]"
	OutcomePrices string     `json:"outcomePrices"` // JSON-encoded: e.g. "[\"0.5\",\"0.5\"]"
	Volume        flexString `json:"volume"`
	CreatedAt     string     `json:"createdAt"`
	EndDate       string     `json:"endDate"`
}

// ToDomainMarket converts a Gamma APIMarket to a domain.Market. Fields that
// fail to parse are left at their zero value; the fetch layer decides whether
// a record with missing identifiers is usable.
func (m *APIMarket) ToDomainMarket() domain.Market {
	dm := domain.Market{
		ConditionID: m.ConditionID,
		ID:          string(m.ID),
		Slug:        m.Slug,
		Question:    m.Question,
		Active:      bool(m.Active),
		Closed:      m.Closed,
	}

	if v, err := strconv.ParseFloat(string(m.Volume), 64); err == nil {
		dm.Volume = v
	}

	// Outcomes and token IDs arrive JSON-encoded inside a string.
	if m.Outcomes != "" {
		_ = json.Unmarshal([]byte(m.Outcomes), &dm.Outcomes)
	}
	if m.ClobTokenIDs != "" {
		_ = json.Unmarshal([]byte(m.ClobTokenIDs), &dm.TokenIDs)
	}

	// Gamma timestamps are RFC3339, usually with fractional seconds.
	if t, err := time.Parse(time.RFC3339, m.CreatedAt); err == nil {
		dm.CreatedAt = t.UTC()
	}

	return dm
}

// --------------------------------------------------------------------------
// CLOB API DTOs
// --------------------------------------------------------------------------

// APIClobMarket represents a market as returned by the CLOB API's
// GET /markets/{conditionID} endpoint.
type APIClobMarket struct {
	ConditionID string         `json:"condition_id"`
	Question    string         `json:"question"`
	Tokens      []APIClobToken `json:"tokens"`
}

// APIClobToken is one outcome token inside a CLOB market response.
type APIClobToken struct {
	TokenID string `json:"token_id"`
	Outcome string `json:"outcome"`
	Winner  bool   `json:"winner"`
}

// APIBook represents an order-book snapshot from the CLOB API's
// GET /book endpoint. Price levels are decimal strings.
type APIBook struct {
	Market    string          `json:"market"`
	AssetID   string          `json:"asset_id"`
	Timestamp string          `json:"timestamp"`
	Bids      []APIPriceLevel `json:"bids"`
	Asks      []APIPriceLevel `json:"asks"`
}

// APIPriceLevel is a single bid/ask level in the CLOB order-book data.
type APIPriceLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}
