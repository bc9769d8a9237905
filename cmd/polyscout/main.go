// Command polyscout looks up Polymarket market metadata and order-book
// quotes. It loads configuration, wires the fetch/resolve/pricing layers,
// and dispatches to one of the subcommands:
//
//	fetch-recent-markets   list markets created within a time window
//	find-id                resolve a short id or slug to a condition id
//	market-price           best bid/ask per outcome for a market
//	serve                  run the read-only web listing
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alanyoungcy/polyscout/internal/app"
	"github.com/alanyoungcy/polyscout/internal/config"
	"github.com/alanyoungcy/polyscout/internal/domain"
)

const usage = `usage: polyscout [-config path] <command> [flags]

commands:
  fetch-recent-markets [-window 24h] [-limit N]   list recently created markets
  find-id [-limit N] <token>                      resolve a short id or slug
  market-price <token>                            best bid/ask per outcome
  serve                                           run the web listing server
`

func main() {
	configPath := flag.String("config", "polyscout.toml", "path to configuration file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Load configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	// Structured JSON logger on stderr so command output stays clean.
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	application := app.New(cfg, logger)
	deps, err := application.Wire()
	if err != nil {
		logger.Error("failed to wire dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd := args[0]; cmd {
	case "fetch-recent-markets":
		err = cmdFetchRecent(ctx, deps, cfg, args[1:])
	case "find-id":
		err = cmdFindID(ctx, deps, cfg, args[1:])
	case "market-price":
		err = cmdMarketPrice(ctx, deps, args[1:])
	case "serve":
		err = application.Serve(ctx, deps)
		if err == nil || errors.Is(err, context.Canceled) {
			logger.Info("server stopped")
			return
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode distinguishes total endpoint unavailability from other failures so
// scripts can tell "venue down" apart from "bad token".
func exitCode(err error) int {
	if errors.Is(err, domain.ErrAllEndpoints) {
		return 2
	}
	return 1
}

// cmdFetchRecent lists markets created within a window (or the newest N when
// -limit is given) as a text table.
func cmdFetchRecent(ctx context.Context, deps *app.Dependencies, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("fetch-recent-markets", flag.ExitOnError)
	window := fs.Duration("window", cfg.Markets.DefaultWindow.Duration, "creation-time lower bound")
	limit := fs.Int("limit", 0, "fetch the newest N markets instead of a window")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		markets []domain.Market
		err     error
	)
	if *limit > 0 {
		markets, err = deps.Fetcher.FetchLatest(ctx, *limit)
	} else {
		markets, err = deps.Fetcher.FetchRecent(ctx, *window)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSLUG\tCREATED\tCONDITION ID")
	for _, m := range markets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			orDash(m.ID), m.Slug, m.CreatedAt.Format(time.RFC3339), m.ConditionID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("fetched %d markets\n", len(markets))
	return nil
}

// cmdFindID resolves a short numeric id or slug to its condition id.
func cmdFindID(ctx context.Context, deps *app.Dependencies, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("find-id", flag.ExitOnError)
	limit := fs.Int("limit", 0, "search the newest N markets instead of the default windows")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("find-id requires exactly one token argument")
	}
	token := fs.Arg(0)

	var (
		conditionID string
		err         error
	)
	if *limit > 0 {
		conditionID, err = deps.Resolver.ResolveLatest(ctx, token, *limit)
	} else {
		conditionID, err = deps.Resolver.Resolve(ctx, token)
	}
	if err != nil {
		return err
	}

	fmt.Println(conditionID)
	return nil
}

// cmdMarketPrice prints the best bid/ask for every outcome of a market. The
// token may be a short id, a slug, or a full condition id.
func cmdMarketPrice(ctx context.Context, deps *app.Dependencies, args []string) error {
	fs := flag.NewFlagSet("market-price", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("market-price requires exactly one token argument")
	}

	quotes, err := deps.Pricing.Quote(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Printf("%s  %s\n", quotes.ConditionID, quotes.Question)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OUTCOME\tBID\tASK")
	for _, q := range quotes.Quotes {
		bid, ask := "-", "-"
		if q.BestBid != nil {
			bid = q.BestBid.String()
		}
		if q.BestAsk != nil {
			ask = q.BestAsk.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", q.Outcome, bid, ask)
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
