package config

import (
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/filex"
)

// Config holds runtime settings for the tracker CLI.
//
// Fields:
//   - ServerURL: base URL of the REST API.
//   - RequestTimeout: upper bound for a single API call, including board moves.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - StateFile: SQLite file keeping the session between runs.
type Config struct {
	ServerURL           string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	StateFile           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:5000"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 5 * time.Second
	c.StateFile = filepath.Join(filex.DataDir("issuetracker"), "session.db")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
