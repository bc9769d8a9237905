package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies POLYSCOUT_* environment variable overrides, and
// returns the final Config. A missing config file is not an error; the tool
// then runs on defaults plus environment overrides. The returned Config has
// NOT been validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known POLYSCOUT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators point the tool at alternate hosts without
// touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Markets ──
	setStr(&cfg.Markets.OverrideURL, "POLYSCOUT_MARKETS_URL")
	setStringSlice(&cfg.Markets.GammaHosts, "POLYSCOUT_MARKETS_GAMMA_HOSTS")
	setStr(&cfg.Markets.SubgraphURL, "POLYSCOUT_MARKETS_SUBGRAPH_URL")
	setStr(&cfg.Markets.SubgraphAPIKey, "POLYSCOUT_MARKETS_SUBGRAPH_API_KEY")
	setDuration(&cfg.Markets.HTTPTimeout, "POLYSCOUT_MARKETS_HTTP_TIMEOUT")
	setDuration(&cfg.Markets.DefaultWindow, "POLYSCOUT_MARKETS_DEFAULT_WINDOW")
	setDuration(&cfg.Markets.EscalationWindow, "POLYSCOUT_MARKETS_ESCALATION_WINDOW")
	setInt(&cfg.Markets.SearchLimit, "POLYSCOUT_MARKETS_SEARCH_LIMIT")
	setInt(&cfg.Markets.FetchPageLimit, "POLYSCOUT_MARKETS_FETCH_PAGE_LIMIT")

	// ── CLOB ──
	setStr(&cfg.Clob.Host, "POLYSCOUT_CLOB_HOST")
	setDuration(&cfg.Clob.HTTPTimeout, "POLYSCOUT_CLOB_HTTP_TIMEOUT")

	// ── Server ──
	setInt(&cfg.Server.Port, "POLYSCOUT_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "POLYSCOUT_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.ListLimit, "POLYSCOUT_SERVER_LIST_LIMIT")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "POLYSCOUT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
