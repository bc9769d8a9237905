// Package resolver maps human-facing market identifiers (short numeric IDs
// and slugs) to the canonical condition IDs required by the order-book API.
package resolver

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"github.com/alanyoungcy/polyscout/internal/domain"
)

// canonicalPattern matches a condition ID: "0x" followed by 64 hex chars.
var canonicalPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// MarketFetcher is the fetch capability the resolver needs. Satisfied by
// *fetcher.Fetcher.
type MarketFetcher interface {
	FetchRecent(ctx context.Context, window time.Duration) ([]domain.Market, error)
	FetchLatest(ctx context.Context, limit int) ([]domain.Market, error)
}

// Resolver resolves identifier tokens against recently created markets.
type Resolver struct {
	fetcher          MarketFetcher
	defaultWindow    time.Duration
	escalationWindow time.Duration
	logger           *slog.Logger
}

// New creates a Resolver. defaultWindow bounds the first search pass;
// escalationWindow bounds the single widened retry.
func New(fetcher MarketFetcher, defaultWindow, escalationWindow time.Duration, logger *slog.Logger) *Resolver {
	return &Resolver{
		fetcher:          fetcher,
		defaultWindow:    defaultWindow,
		escalationWindow: escalationWindow,
		logger:           logger.With(slog.String("component", "resolver")),
	}
}

// Resolve returns the canonical condition ID for token. A token already in
// canonical form is returned unchanged without any network call. Otherwise
// the default window is scanned for a market whose short ID or slug equals
// the token exactly; on no match the window is widened once and the scan
// retried. More than one match fails with *domain.AmbiguousError; none after
// escalation fails with *domain.NotFoundError listing both windows.
func (r *Resolver) Resolve(ctx context.Context, token string) (string, error) {
	if canonicalPattern.MatchString(token) {
		return token, nil
	}

	windows := []time.Duration{r.defaultWindow}
	if r.escalationWindow > r.defaultWindow {
		windows = append(windows, r.escalationWindow)
	}

	for _, window := range windows {
		markets, err := r.fetcher.FetchRecent(ctx, window)
		if err != nil {
			return "", err
		}

		matches := matchToken(token, markets)
		switch len(matches) {
		case 0:
			r.logger.DebugContext(ctx, "token not found in window",
				slog.String("token", token),
				slog.Duration("window", window),
			)
		case 1:
			return matches[0], nil
		default:
			return "", &domain.AmbiguousError{Token: token, ConditionIDs: matches}
		}
	}

	return "", &domain.NotFoundError{Token: token, Windows: windows}
}

// ResolveLatest scans the newest limit markets instead of a time window. The
// explicit limit replaces window escalation; a miss is final.
func (r *Resolver) ResolveLatest(ctx context.Context, token string, limit int) (string, error) {
	if canonicalPattern.MatchString(token) {
		return token, nil
	}

	markets, err := r.fetcher.FetchLatest(ctx, limit)
	if err != nil {
		return "", err
	}

	matches := matchToken(token, markets)
	switch len(matches) {
	case 0:
		return "", &domain.NotFoundError{Token: token, Limit: limit}
	case 1:
		return matches[0], nil
	default:
		return "", &domain.AmbiguousError{Token: token, ConditionIDs: matches}
	}
}

// matchToken collects the condition IDs of markets whose short ID or slug
// equals token. Exact match only; a near-miss is not-found, never a guess.
func matchToken(token string, markets []domain.Market) []string {
	var matches []string
	for _, m := range markets {
		if (m.ID != "" && m.ID == token) || m.Slug == token {
			matches = append(matches, m.ConditionID)
		}
	}
	return matches
}
