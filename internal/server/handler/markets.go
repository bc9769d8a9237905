package handler

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/polyscout/internal/domain"
)

// maxListLimit caps how many markets one listing request may ask for.
const maxListLimit = 500

// MarketLister defines the fetch capability the market handler requires. It
// is declared locally so the handler package does not depend on the concrete
// fetcher implementation.
type MarketLister interface {
	FetchLatest(ctx context.Context, limit int) ([]domain.Market, error)
}

// MarketHandler serves the read-only market listing endpoints. Every request
// performs its own independent fetch; no state is shared across requests.
type MarketHandler struct {
	markets   MarketLister
	listLimit int
	logger    *slog.Logger
}

// NewMarketHandler creates a MarketHandler with the given fetcher and default
// listing size.
func NewMarketHandler(markets MarketLister, listLimit int, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		markets:   markets,
		listLimit: listLimit,
		logger:    logger,
	}
}

// listMarketsResponse wraps the list endpoint output with metadata.
type listMarketsResponse struct {
	Markets []domain.Market `json:"markets"`
	Count   int             `json:"count"`
	Limit   int             `json:"limit"`
}

// ListMarkets returns the newest markets as JSON.
// GET /api/markets?limit=50
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, h.listLimit, maxListLimit)

	markets, err := h.markets.FetchLatest(r.Context(), limit)
	if err != nil {
		h.serveFetchError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listMarketsResponse{
		Markets: markets,
		Count:   len(markets),
		Limit:   limit,
	})
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Polymarket Recent Markets</title>
  <style>
    body { font-family: sans-serif; margin: 2rem; }
    table { border-collapse: collapse; width: 100%; }
    th, td { border: 1px solid #ccc; padding: 0.4rem 0.6rem; text-align: left; }
    th { background: #f0f0f0; }
    td.cond { font-family: monospace; font-size: 0.85em; }
  </style>
</head>
<body>
  <h1>Recent Markets ({{len .Markets}})</h1>
  <table>
    <tr><th>ID</th><th>Slug</th><th>Question</th><th>Condition ID</th><th>Created</th></tr>
    {{range .Markets}}
    <tr>
      <td>{{.ID}}</td>
      <td>{{.Slug}}</td>
      <td>{{.Question}}</td>
      <td class="cond">{{.ConditionID}}</td>
      <td>{{.CreatedAt.Format "2006-01-02 15:04:05"}}</td>
    </tr>
    {{end}}
  </table>
</body>
</html>
`))

// Index renders the newest markets as an HTML table.
// GET /
func (h *MarketHandler) Index(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, h.listLimit, maxListLimit)

	markets, err := h.markets.FetchLatest(r.Context(), limit)
	if err != nil {
		h.serveFetchError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, map[string]any{"Markets": markets}); err != nil {
		h.logger.ErrorContext(r.Context(), "handler: render index failed",
			slog.String("error", err.Error()),
		)
	}
}

// serveFetchError maps fetch failures to responses. An all-endpoints-down
// condition is reported as a generic 502; the per-candidate reasons stay in
// the logs.
func (h *MarketHandler) serveFetchError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrAllEndpoints) {
		h.logger.ErrorContext(r.Context(), "handler: all market endpoints unavailable",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "market data temporarily unavailable")
		return
	}
	h.logger.ErrorContext(r.Context(), "handler: list markets failed",
		slog.String("error", err.Error()),
	)
	writeError(w, http.StatusInternalServerError, "failed to list markets")
}
