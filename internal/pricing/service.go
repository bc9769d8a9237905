// Package pricing reports best bid/ask quotes for a market's outcomes by
// combining identifier resolution with the CLOB order-book API.
package pricing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/polyscout/internal/domain"
	"github.com/alanyoungcy/polyscout/internal/platform/polymarket"
)

// TokenResolver resolves an identifier token to a condition ID. Satisfied by
// *resolver.Resolver.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// ClobAPI is the subset of the CLOB client the pricing service uses.
type ClobAPI interface {
	GetMarket(ctx context.Context, conditionID string) (polymarket.APIClobMarket, error)
	GetOrderBook(ctx context.Context, tokenID string) (domain.OrderBook, error)
}

// Service produces best bid/ask quotes per outcome for a resolved market.
type Service struct {
	resolver TokenResolver
	clob     ClobAPI
	logger   *slog.Logger
}

// New creates a pricing Service.
func New(resolver TokenResolver, clob ClobAPI, logger *slog.Logger) *Service {
	return &Service{
		resolver: resolver,
		clob:     clob,
		logger:   logger.With(slog.String("component", "pricing")),
	}
}

// Quote resolves token to a condition ID, looks up the market's outcome
// tokens, and returns the best bid and ask for each outcome. An empty book
// side yields a nil quote on that side, not an error.
func (s *Service) Quote(ctx context.Context, token string) (domain.MarketQuotes, error) {
	conditionID, err := s.resolver.Resolve(ctx, token)
	if err != nil {
		return domain.MarketQuotes{}, err
	}

	market, err := s.clob.GetMarket(ctx, conditionID)
	if err != nil {
		return domain.MarketQuotes{}, fmt.Errorf("pricing: market %s: %w", conditionID, err)
	}

	quotes := domain.MarketQuotes{
		ConditionID: conditionID,
		Question:    market.Question,
		Quotes:      make([]domain.OutcomeQuote, 0, len(market.Tokens)),
	}

	for _, tok := range market.Tokens {
		if tok.TokenID == "" {
			continue
		}
		book, err := s.clob.GetOrderBook(ctx, tok.TokenID)
		if err != nil {
			return domain.MarketQuotes{}, fmt.Errorf("pricing: book for outcome %q: %w", tok.Outcome, err)
		}
		s.logger.DebugContext(ctx, "fetched order book",
			slog.String("token_id", tok.TokenID),
			slog.String("outcome", tok.Outcome),
			slog.Int("bids", len(book.Bids)),
			slog.Int("asks", len(book.Asks)),
		)
		quotes.Quotes = append(quotes.Quotes, domain.OutcomeQuote{
			Outcome: tok.Outcome,
			TokenID: tok.TokenID,
			BestBid: book.BestBid,
			BestAsk: book.BestAsk,
		})
	}

	return quotes, nil
}
