package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alanyoungcy/polyscout/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeLister struct {
	markets  []domain.Market
	err      error
	gotLimit int
}

func (l *fakeLister) FetchLatest(ctx context.Context, limit int) ([]domain.Market, error) {
	l.gotLimit = limit
	return l.markets, l.err
}

var sampleMarkets = []domain.Market{
	{
		ConditionID: "0xaa000000000000000000000000000000000000000000000000000000000000aa",
		ID:          "550868",
		Slug:        "will-it-rain",
		Question:    "Will it rain?",
		CreatedAt:   time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC),
	},
}

func TestListMarkets(t *testing.T) {
	lister := &fakeLister{markets: sampleMarkets}
	h := NewMarketHandler(lister, 50, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/markets", nil)
	rec := httptest.NewRecorder()
	h.ListMarkets(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp struct {
		Markets []domain.Market `json:"markets"`
		Count   int             `json:"count"`
		Limit   int             `json:"limit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Markets) != 1 {
		t.Errorf("count = %d, markets = %d", resp.Count, len(resp.Markets))
	}
	if resp.Limit != 50 || lister.gotLimit != 50 {
		t.Errorf("limit = %d (handler) / %d (fetch), want 50", resp.Limit, lister.gotLimit)
	}
	if resp.Markets[0].Slug != "will-it-rain" {
		t.Errorf("market = %+v", resp.Markets[0])
	}
}

func TestListMarketsLimitParam(t *testing.T) {
	for _, tc := range []struct {
		query string
		want  int
	}{
		{"?limit=10", 10},
		{"?limit=junk", 50},
		{"?limit=-3", 50},
		{"?limit=9999", maxListLimit},
	} {
		lister := &fakeLister{markets: nil}
		h := NewMarketHandler(lister, 50, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/markets"+tc.query, nil)
		rec := httptest.NewRecorder()
		h.ListMarkets(rec, req)

		if lister.gotLimit != tc.want {
			t.Errorf("query %q: limit = %d, want %d", tc.query, lister.gotLimit, tc.want)
		}
	}
}

func TestListMarketsAllEndpointsDown(t *testing.T) {
	lister := &fakeLister{err: &domain.EndpointsError{Failures: []domain.EndpointFailure{
		{Endpoint: "gamma a", Reason: errors.New("connection refused")},
		{Endpoint: "gamma b", Reason: errors.New("HTTP 503")},
	}}}
	h := NewMarketHandler(lister, 50, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/markets", nil)
	rec := httptest.NewRecorder()
	h.ListMarkets(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	body := rec.Body.String()
	// Per-candidate failure details belong in the logs, not the response.
	if strings.Contains(body, "connection refused") || strings.Contains(body, "gamma a") {
		t.Errorf("response leaks endpoint details: %s", body)
	}
	if !strings.Contains(body, "temporarily unavailable") {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestListMarketsGenericError(t *testing.T) {
	lister := &fakeLister{err: errors.New("otherwise broken")}
	h := NewMarketHandler(lister, 50, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/markets", nil)
	rec := httptest.NewRecorder()
	h.ListMarkets(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestIndexHTML(t *testing.T) {
	lister := &fakeLister{markets: sampleMarkets}
	h := NewMarketHandler(lister, 50, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Index(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"will-it-rain", "Will it rain?", "550868", "0xaa"} {
		if !strings.Contains(body, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	h := NewHealthHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status field = %v", resp["status"])
	}
}
