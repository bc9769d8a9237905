package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/alanyoungcy/polyscout/internal/domain"
	"github.com/alanyoungcy/polyscout/internal/platform/polymarket"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource is a scriptable MarketSource that records how often it was
// called.
type fakeSource struct {
	name    string
	markets []domain.Market
	err     error
	calls   int
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) FetchSince(ctx context.Context, since time.Time) ([]domain.Market, error) {
	s.calls++
	return s.markets, s.err
}

func (s *fakeSource) FetchLatest(ctx context.Context, limit int) ([]domain.Market, error) {
	s.calls++
	return s.markets, s.err
}

func mkMarket(id, slug string) domain.Market {
	return domain.Market{
		ConditionID: "0x" + id,
		ID:          id,
		Slug:        slug,
		CreatedAt:   time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC),
	}
}

func TestFetchRecentFallbackOrder(t *testing.T) {
	want := []domain.Market{mkMarket("1", "winner")}

	// The succeeding source is placed at every position; all preceding
	// candidates must be attempted exactly once, in order, and none after.
	for pos := 0; pos < 3; pos++ {
		t.Run(fmt.Sprintf("winner_at_%d", pos), func(t *testing.T) {
			sources := make([]*fakeSource, 3)
			list := make([]MarketSource, 3)
			for i := range sources {
				sources[i] = &fakeSource{name: fmt.Sprintf("s%d", i), err: errors.New("boom")}
				if i == pos {
					sources[i] = &fakeSource{name: fmt.Sprintf("s%d", i), markets: want}
				}
				list[i] = sources[i]
			}

			f := New(list, testLogger())
			got, err := f.FetchRecent(context.Background(), time.Hour)
			if err != nil {
				t.Fatalf("FetchRecent: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("got %+v, want %+v", got, want)
			}

			for i, s := range sources {
				wantCalls := 0
				if i <= pos {
					wantCalls = 1
				}
				if s.calls != wantCalls {
					t.Errorf("source %d called %d times, want %d", i, s.calls, wantCalls)
				}
			}
		})
	}
}

func TestFetchRecentAllFail(t *testing.T) {
	s1 := &fakeSource{name: "gamma a", err: errors.New("connection refused")}
	s2 := &fakeSource{name: "gamma b", err: errors.New("HTTP 503")}

	f := New([]MarketSource{s1, s2}, testLogger())
	_, err := f.FetchRecent(context.Background(), time.Hour)
	if err == nil {
		t.Fatal("expected error when all candidates fail")
	}
	if !errors.Is(err, domain.ErrAllEndpoints) {
		t.Errorf("error %v is not ErrAllEndpoints", err)
	}

	var epErr *domain.EndpointsError
	if !errors.As(err, &epErr) {
		t.Fatalf("error %T is not *EndpointsError", err)
	}
	if len(epErr.Failures) != 2 {
		t.Fatalf("got %d failures, want 2", len(epErr.Failures))
	}
	if epErr.Failures[0].Endpoint != "gamma a" || epErr.Failures[1].Endpoint != "gamma b" {
		t.Errorf("failures out of order: %+v", epErr.Failures)
	}
}

func TestFetchRecentEmptyResultIsSuccess(t *testing.T) {
	empty := &fakeSource{name: "empty", markets: []domain.Market{}}
	fallback := &fakeSource{name: "fallback", markets: []domain.Market{mkMarket("1", "x")}}

	f := New([]MarketSource{empty, fallback}, testLogger())
	got, err := f.FetchRecent(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("FetchRecent: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d markets, want 0", len(got))
	}
	if fallback.calls != 0 {
		t.Error("empty well-formed result must not trigger fallback")
	}
}

func TestFetchRecentSkipsMalformedEntries(t *testing.T) {
	src := &fakeSource{name: "s", markets: []domain.Market{
		mkMarket("1", "good"),
		{Slug: "no-condition-id", CreatedAt: time.Now()},
		{ConditionID: "0x2", Slug: "no-created-at"},
		mkMarket("3", "also-good"),
	}}

	f := New([]MarketSource{src}, testLogger())
	got, err := f.FetchRecent(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("FetchRecent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d markets, want 2", len(got))
	}
	if got[0].Slug != "good" || got[1].Slug != "also-good" {
		t.Errorf("unexpected records kept: %+v", got)
	}
}

func TestFetchRecentAllMalformedTriggersFallback(t *testing.T) {
	bad := &fakeSource{name: "bad", markets: []domain.Market{
		{Slug: "a"},
		{Slug: "b"},
	}}
	good := &fakeSource{name: "good", markets: []domain.Market{mkMarket("1", "x")}}

	f := New([]MarketSource{bad, good}, testLogger())
	got, err := f.FetchRecent(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("FetchRecent: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "x" {
		t.Errorf("expected fallback result, got %+v", got)
	}
	if good.calls != 1 {
		t.Error("all-malformed payload must trigger fallback")
	}
}

func TestFetchRecentDuplicateConditionIDTriggersFallback(t *testing.T) {
	dup := mkMarket("1", "dup")
	bad := &fakeSource{name: "bad", markets: []domain.Market{dup, dup}}
	good := &fakeSource{name: "good", markets: []domain.Market{mkMarket("2", "y")}}

	f := New([]MarketSource{bad, good}, testLogger())
	got, err := f.FetchRecent(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("FetchRecent: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "y" {
		t.Errorf("expected fallback result, got %+v", got)
	}
}

func TestFetchRecentIdempotent(t *testing.T) {
	src := &fakeSource{name: "s", markets: []domain.Market{
		mkMarket("1", "a"),
		mkMarket("2", "b"),
	}}
	f := New([]MarketSource{src}, testLogger())

	first, err := f.FetchRecent(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := f.FetchRecent(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated fetches differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestFetchRecentFallsBackPastErrorObjectPayload(t *testing.T) {
	// A candidate answering 200 with an error object instead of a markets
	// array must count as failed so the next candidate gets contacted.
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer broken.Close()

	var healthyCalled bool
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		healthyCalled = true
		w.Write([]byte(`[{
			"id": "1",
			"conditionId": "0xaa000000000000000000000000000000000000000000000000000000000000aa",
			"slug": "still-up",
			"createdAt": "2025-06-09T08:00:00Z"
		}]`))
	}))
	defer healthy.Close()

	f := New([]MarketSource{
		polymarket.NewGammaClient(broken.URL, 5*time.Second, 0),
		polymarket.NewGammaClient(healthy.URL, 5*time.Second, 0),
	}, testLogger())

	got, err := f.FetchRecent(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("FetchRecent: %v", err)
	}
	if !healthyCalled {
		t.Fatal("second candidate was never contacted")
	}
	if len(got) != 1 || got[0].Slug != "still-up" {
		t.Errorf("got %+v", got)
	}
}

func TestFetchLatestUsesFallbackToo(t *testing.T) {
	s1 := &fakeSource{name: "s1", err: errors.New("down")}
	s2 := &fakeSource{name: "s2", markets: []domain.Market{mkMarket("1", "a")}}

	f := New([]MarketSource{s1, s2}, testLogger())
	got, err := f.FetchLatest(context.Background(), 10)
	if err != nil {
		t.Fatalf("FetchLatest: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d markets, want 1", len(got))
	}
}
