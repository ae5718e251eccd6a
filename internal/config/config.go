package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration, loaded from a single TOML file.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
	Storage StorageConfig `toml:"storage"`
	Search  SearchConfig  `toml:"search"`
	Scraper ScraperConfig `toml:"scraper"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host               string   `toml:"host"`
	Port               int      `toml:"port"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
	StaticFilesDir     string   `toml:"static_files_dir"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// StorageConfig configures the snapshot store.
type StorageConfig struct {
	Path string `toml:"path"`
}

// SearchConfig describes the one round-trip search this instance tracks.
type SearchConfig struct {
	Origin        string      `toml:"origin"`
	Destination   string      `toml:"destination"`
	DepartureDate string      `toml:"departure_date"` // YYYY-MM-DD
	ReturnDate    string      `toml:"return_date"`    // YYYY-MM-DD
	Passengers    int         `toml:"passengers"`
	Match         MatchConfig `toml:"match"`
}

// MatchConfig holds the optional time hints used to pick one result row per
// direction. Empty hints impose no constraint; a direction with no hints at
// all is rejected at extraction time rather than defaulting to the first row.
type MatchConfig struct {
	OutboundStart string `toml:"outbound_start"`
	OutboundEnd   string `toml:"outbound_end"`
	InboundStart  string `toml:"inbound_start"`
	InboundEnd    string `toml:"inbound_end"`
}

// ScraperConfig configures the capture runs.
type ScraperConfig struct {
	BaseURL            string `toml:"base_url"`
	Schedule           string `toml:"schedule"` // cron expression, empty disables scheduling
	Headless           bool   `toml:"headless"`
	WaitTimeoutSeconds int    `toml:"wait_timeout_seconds"`
}

// WaitTimeout returns the element wait timeout as a duration.
func (c ScraperConfig) WaitTimeout() time.Duration {
	return time.Duration(c.WaitTimeoutSeconds) * time.Second
}

// DefaultConfig returns a config with sensible defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Storage: StorageConfig{
			Path: "faretrack.db",
		},
		Search: SearchConfig{
			Passengers: 1,
		},
		Scraper: ScraperConfig{
			Headless:           true,
			WaitTimeoutSeconds: 30,
		},
	}
}

// Load reads and validates the configuration file at the given path.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}
	if c.Search.Passengers <= 0 {
		return fmt.Errorf("passenger count must be positive: %d", c.Search.Passengers)
	}
	for name, date := range map[string]string{
		"departure_date": c.Search.DepartureDate,
		"return_date":    c.Search.ReturnDate,
	} {
		if date == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, date, err)
		}
	}
	return nil
}
