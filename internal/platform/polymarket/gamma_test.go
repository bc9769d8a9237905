package polymarket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const gammaSample = `[
  {
    "id": 550868,
    "question": "Will it rain in NYC on June 10?",
    "conditionId": "0xaa000000000000000000000000000000000000000000000000000000000000aa",
    "slug": "will-it-rain-nyc-june-10",
    "active": "true",
    "closed": false,
    "outcomes": "[\"Yes\", \"No\"]",
    "clobTokenIds": "[\"111\", \"222\"]",
    "outcomePrices": "[\"0.42\", \"0.58\"]",
    "volume": "12345.67",
    "createdAt": "2025-06-09T08:15:00.123Z"
  }
]`

func TestGammaFetchSince(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		gotQuery = map[string]string{
			"created_after": q.Get("created_after"),
			"order":         q.Get("order"),
			"ascending":     q.Get("ascending"),
			"limit":         q.Get("limit"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(gammaSample))
	}))
	defer srv.Close()

	client := NewGammaClient(srv.URL, 5*time.Second, 2500)
	since := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	markets, err := client.FetchSince(context.Background(), since)
	if err != nil {
		t.Fatalf("FetchSince: %v", err)
	}

	if gotQuery["created_after"] != "2025-06-09T00:00:00Z" {
		t.Errorf("created_after = %q", gotQuery["created_after"])
	}
	if gotQuery["order"] != "id" || gotQuery["ascending"] != "false" {
		t.Errorf("ordering params = %v", gotQuery)
	}
	if gotQuery["limit"] != "2500" {
		t.Errorf("limit = %q, want configured page limit 2500", gotQuery["limit"])
	}

	if len(markets) != 1 {
		t.Fatalf("got %d markets, want 1", len(markets))
	}
	m := markets[0]
	if m.ID != "550868" {
		t.Errorf("ID = %q (numeric id must normalize to string)", m.ID)
	}
	if m.ConditionID != "0xaa000000000000000000000000000000000000000000000000000000000000aa" {
		t.Errorf("ConditionID = %q", m.ConditionID)
	}
	if !m.Active {
		t.Error("string \"true\" must normalize to Active=true")
	}
	if len(m.Outcomes) != 2 || m.Outcomes[0] != "Yes" {
		t.Errorf("Outcomes = %v (JSON-in-string must decode)", m.Outcomes)
	}
	if len(m.TokenIDs) != 2 || m.TokenIDs[1] != "222" {
		t.Errorf("TokenIDs = %v", m.TokenIDs)
	}
	if m.Volume != 12345.67 {
		t.Errorf("Volume = %v", m.Volume)
	}
	want := time.Date(2025, 6, 9, 8, 15, 0, 123000000, time.UTC)
	if !m.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", m.CreatedAt, want)
	}
}

func TestGammaDefaultPageLimit(t *testing.T) {
	// A window fetch must ask for enough records to cover the escalation
	// window; a small default would silently hide older in-window markets.
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewGammaClient(srv.URL, 5*time.Second, 0)
	if _, err := client.FetchSince(context.Background(), time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("FetchSince: %v", err)
	}
	if gotLimit != "10000" {
		t.Errorf("limit = %q, want default 10000", gotLimit)
	}
}

func TestGammaFetchLatestLimit(t *testing.T) {
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewGammaClient(srv.URL, 5*time.Second, 0)
	markets, err := client.FetchLatest(context.Background(), 25)
	if err != nil {
		t.Fatalf("FetchLatest: %v", err)
	}
	if gotLimit != "25" {
		t.Errorf("limit = %q, want 25", gotLimit)
	}
	if len(markets) != 0 {
		t.Errorf("got %d markets, want 0", len(markets))
	}
}

func TestGammaEnvelopePayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": ` + gammaSample + `}`))
	}))
	defer srv.Close()

	client := NewGammaClient(srv.URL, 5*time.Second, 0)
	markets, err := client.FetchLatest(context.Background(), 10)
	if err != nil {
		t.Fatalf("FetchLatest: %v", err)
	}
	if len(markets) != 1 {
		t.Fatalf("got %d markets from enveloped payload, want 1", len(markets))
	}
}

func TestGammaHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewGammaClient(srv.URL, 5*time.Second, 0)
	_, err := client.FetchLatest(context.Background(), 10)
	if err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("404 should surface as a plain transport failure, got %v", err)
	}
}

func TestGammaBadPayload(t *testing.T) {
	// A 2xx object without a "data" array (an error body, say) must fail the
	// candidate so the fallback loop moves on; it is not an empty result.
	for _, body := range []string{
		`{"error": "rate limited"}`,
		`{"unexpected": "shape"}`,
		`"just a string"`,
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		client := NewGammaClient(srv.URL, 5*time.Second, 0)
		_, err := client.FetchLatest(context.Background(), 10)
		srv.Close()
		if err == nil {
			t.Errorf("payload %s: expected schema-mismatch error", body)
		}
	}
}

func TestGammaName(t *testing.T) {
	client := NewGammaClient("https://gamma-api.polymarket.com", time.Second, 0)
	if client.Name() != "gamma https://gamma-api.polymarket.com" {
		t.Errorf("Name() = %q", client.Name())
	}
}
