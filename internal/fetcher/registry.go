package fetcher

import (
	"fmt"
	"strings"

	"github.com/alanyoungcy/polyscout/internal/config"
	"github.com/alanyoungcy/polyscout/internal/domain"
	"github.com/alanyoungcy/polyscout/internal/platform/polymarket"
	"github.com/alanyoungcy/polyscout/internal/platform/subgraph"
)

// BuildSources resolves the configured candidate endpoints into an ordered,
// non-empty source list. When an override URL is set it replaces the entire
// list, even if the override later fails. No network access happens here.
func BuildSources(cfg config.MarketsConfig) ([]MarketSource, error) {
	if override := strings.TrimSpace(cfg.OverrideURL); override != "" {
		return []MarketSource{
			polymarket.NewGammaClient(override, cfg.HTTPTimeout.Duration, cfg.FetchPageLimit),
		}, nil
	}

	var sources []MarketSource
	for _, host := range cfg.GammaHosts {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}
		sources = append(sources, polymarket.NewGammaClient(host, cfg.HTTPTimeout.Duration, cfg.FetchPageLimit))
	}
	if url := strings.TrimSpace(cfg.SubgraphURL); url != "" {
		sources = append(sources, subgraph.NewClient(url, cfg.SubgraphAPIKey, cfg.HTTPTimeout.Duration, cfg.FetchPageLimit))
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no candidate market endpoints", domain.ErrConfiguration)
	}

	return sources, nil
}
