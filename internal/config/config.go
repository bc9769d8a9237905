// Package config defines the configuration for the polyscout utility and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by POLYSCOUT_* environment variables.
type Config struct {
	Markets  MarketsConfig `toml:"markets"`
	Clob     ClobConfig    `toml:"clob"`
	Server   ServerConfig  `toml:"server"`
	LogLevel string        `toml:"log_level"`
}

// MarketsConfig holds the candidate market-API endpoints and search windows.
type MarketsConfig struct {
	// OverrideURL, when non-empty, replaces the entire candidate list with a
	// single Gamma endpoint. Set via POLYSCOUT_MARKETS_URL for one-off runs
	// against an alternate host.
	OverrideURL string `toml:"override_url"`
	// GammaHosts is the ordered list of Gamma REST hosts to try first.
	GammaHosts []string `toml:"gamma_hosts"`
	// SubgraphURL is an optional GraphQL markets endpoint appended as the
	// last candidate. Leave empty to skip.
	SubgraphURL    string `toml:"subgraph_url"`
	SubgraphAPIKey string `toml:"subgraph_api_key"`

	HTTPTimeout duration `toml:"http_timeout"`
	// DefaultWindow is the creation-time lower bound for "recent" markets.
	DefaultWindow duration `toml:"default_window"`
	// EscalationWindow is the single widened window used when a token is not
	// found within DefaultWindow.
	EscalationWindow duration `toml:"escalation_window"`
	// SearchLimit is the newest-N record count used by limit-bounded lookups.
	SearchLimit int `toml:"search_limit"`
	// FetchPageLimit caps how many records a single window-bounded fetch asks
	// an endpoint for. Markets created inside the window but beyond the
	// newest FetchPageLimit records are not seen, so this must comfortably
	// exceed the market creation rate over the escalation window.
	FetchPageLimit int `toml:"fetch_page_limit"`
}

// ClobConfig holds the CLOB order-book API parameters.
type ClobConfig struct {
	Host        string   `toml:"host"`
	HTTPTimeout duration `toml:"http_timeout"`
}

// ServerConfig holds HTTP server parameters for the web listing.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// ListLimit is how many of the newest markets the web listing shows.
	ListLimit int `toml:"list_limit"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "24h" or "10s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Markets: MarketsConfig{
			GammaHosts:       []string{"https://gamma-api.polymarket.com"},
			HTTPTimeout:      duration{10 * time.Second},
			DefaultWindow:    duration{24 * time.Hour},
			EscalationWindow: duration{7 * 24 * time.Hour},
			SearchLimit:      100,
			FetchPageLimit:   10000,
		},
		Clob: ClobConfig{
			Host:        "https://clob.polymarket.com",
			HTTPTimeout: duration{10 * time.Second},
		},
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{},
			ListLimit:   50,
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Markets — the candidate sequence must not end up empty.
	if c.Markets.OverrideURL == "" && len(c.Markets.GammaHosts) == 0 && c.Markets.SubgraphURL == "" {
		errs = append(errs, "markets: no candidate endpoints (set gamma_hosts, subgraph_url, or override_url)")
	}
	for i, h := range c.Markets.GammaHosts {
		if strings.TrimSpace(h) == "" {
			errs = append(errs, fmt.Sprintf("markets: gamma_hosts[%d] must not be empty", i))
		}
	}
	if c.Markets.HTTPTimeout.Duration <= 0 {
		errs = append(errs, "markets: http_timeout must be positive")
	}
	if c.Markets.DefaultWindow.Duration <= 0 {
		errs = append(errs, "markets: default_window must be positive")
	}
	if c.Markets.EscalationWindow.Duration < c.Markets.DefaultWindow.Duration {
		errs = append(errs, "markets: escalation_window must not be shorter than default_window")
	}
	if c.Markets.SearchLimit < 1 {
		errs = append(errs, "markets: search_limit must be >= 1")
	}
	if c.Markets.FetchPageLimit < 1 {
		errs = append(errs, "markets: fetch_page_limit must be >= 1")
	}

	// CLOB
	if c.Clob.Host == "" {
		errs = append(errs, "clob: host must not be empty")
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ListLimit < 1 {
		errs = append(errs, "server: list_limit must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
