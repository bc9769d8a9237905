// Package fetcher implements the endpoint-fallback market fetch: an ordered
// list of candidate market sources is tried sequentially until one returns a
// usable payload.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/polyscout/internal/domain"
)

// MarketSource is one candidate markets endpoint. Implementations speak
// whatever protocol their endpoint requires (REST query params, GraphQL
// query body) and return normalized records.
type MarketSource interface {
	// Name identifies the endpoint in logs and failure reports.
	Name() string
	// FetchSince returns markets created at or after the given time.
	FetchSince(ctx context.Context, since time.Time) ([]domain.Market, error)
	// FetchLatest returns the newest limit markets.
	FetchLatest(ctx context.Context, limit int) ([]domain.Market, error)
}

// Fetcher tries candidate sources in priority order. Attempts are strictly
// sequential; the next candidate is only contacted after the previous one has
// definitively failed.
type Fetcher struct {
	sources []MarketSource
	logger  *slog.Logger
}

// New creates a Fetcher over the given ordered candidate sources.
func New(sources []MarketSource, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		sources: sources,
		logger:  logger.With(slog.String("component", "fetcher")),
	}
}

// FetchRecent returns markets created within the given window, from the first
// candidate that produces a usable payload. An endpoint returning a
// well-formed empty list is a success, not a failure. If every candidate
// fails, the returned error is a *domain.EndpointsError listing each
// candidate's failure reason.
func (f *Fetcher) FetchRecent(ctx context.Context, window time.Duration) ([]domain.Market, error) {
	since := time.Now().Add(-window).UTC()
	return f.fetch(ctx, func(ctx context.Context, s MarketSource) ([]domain.Market, error) {
		return s.FetchSince(ctx, since)
	})
}

// FetchLatest returns the newest limit markets through the same fallback loop.
func (f *Fetcher) FetchLatest(ctx context.Context, limit int) ([]domain.Market, error) {
	return f.fetch(ctx, func(ctx context.Context, s MarketSource) ([]domain.Market, error) {
		return s.FetchLatest(ctx, limit)
	})
}

func (f *Fetcher) fetch(ctx context.Context, call func(context.Context, MarketSource) ([]domain.Market, error)) ([]domain.Market, error) {
	var failures []domain.EndpointFailure

	for _, src := range f.sources {
		raw, err := call(ctx, src)
		if err == nil {
			var markets []domain.Market
			markets, err = f.validate(src.Name(), raw)
			if err == nil {
				return markets, nil
			}
		}

		f.logger.WarnContext(ctx, "candidate endpoint failed",
			slog.String("endpoint", src.Name()),
			slog.String("reason", err.Error()),
		)
		failures = append(failures, domain.EndpointFailure{
			Endpoint: src.Name(),
			Reason:   err,
		})
	}

	return nil, &domain.EndpointsError{Failures: failures}
}

// validate filters out malformed entries and enforces the uniqueness
// invariant on condition IDs. A non-empty payload in which every entry is
// malformed, or which contains duplicate condition IDs, counts as a schema
// mismatch for the candidate and triggers fallback.
func (f *Fetcher) validate(endpoint string, raw []domain.Market) ([]domain.Market, error) {
	markets := make([]domain.Market, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, m := range raw {
		if m.ConditionID == "" || m.CreatedAt.IsZero() {
			f.logger.Warn("skipping malformed market entry",
				slog.String("endpoint", endpoint),
				slog.String("condition_id", m.ConditionID),
				slog.String("slug", m.Slug),
			)
			continue
		}
		if seen[m.ConditionID] {
			return nil, fmt.Errorf("schema mismatch: duplicate condition id %s", m.ConditionID)
		}
		seen[m.ConditionID] = true
		markets = append(markets, m)
	}

	if len(raw) > 0 && len(markets) == 0 {
		return nil, fmt.Errorf("schema mismatch: all %d entries malformed", len(raw))
	}

	return markets, nil
}
