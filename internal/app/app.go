// Package app wires the fetch, resolve, and pricing layers together from
// configuration and runs the optional web listing server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polyscout/internal/config"
	"github.com/alanyoungcy/polyscout/internal/fetcher"
	"github.com/alanyoungcy/polyscout/internal/platform/polymarket"
	"github.com/alanyoungcy/polyscout/internal/pricing"
	"github.com/alanyoungcy/polyscout/internal/resolver"
	"github.com/alanyoungcy/polyscout/internal/server"
	"github.com/alanyoungcy/polyscout/internal/server/handler"
)

// App owns the configuration and logger and builds the dependency graph.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// Dependencies bundles the wired components used by the CLI commands and the
// web server. Construction is pure: no network access happens until a
// component is called.
type Dependencies struct {
	Fetcher  *fetcher.Fetcher
	Resolver *resolver.Resolver
	Pricing  *pricing.Service
}

// Wire constructs the candidate sources, fetcher, resolver, and pricing
// service from the configuration.
func (a *App) Wire() (*Dependencies, error) {
	sources, err := fetcher.BuildSources(a.cfg.Markets)
	if err != nil {
		return nil, fmt.Errorf("app: build sources: %w", err)
	}

	f := fetcher.New(sources, a.logger)
	r := resolver.New(f,
		a.cfg.Markets.DefaultWindow.Duration,
		a.cfg.Markets.EscalationWindow.Duration,
		a.logger,
	)
	clob := polymarket.NewClobClient(a.cfg.Clob.Host, a.cfg.Clob.HTTPTimeout.Duration)
	p := pricing.New(r, clob, a.logger)

	return &Dependencies{
		Fetcher:  f,
		Resolver: r,
		Pricing:  p,
	}, nil
}

// Serve runs the web listing server until the context is cancelled, then
// shuts it down gracefully.
func (a *App) Serve(ctx context.Context, deps *Dependencies) error {
	handlers := server.Handlers{
		Health:  handler.NewHealthHandler(),
		Markets: handler.NewMarketHandler(deps.Fetcher, a.cfg.Server.ListLimit, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}, handlers, a.logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	return g.Wait()
}
