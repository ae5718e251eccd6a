package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "faretrack.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
[server]
host = "127.0.0.1"
port = 9090
cors_allowed_origins = ["http://localhost:5173"]

[logging]
level = "debug"
format = "json"

[storage]
path = "/var/lib/faretrack/snapshots.db"

[search]
origin = "YYZ"
destination = "LIS"
departure_date = "2026-06-10"
return_date = "2026-06-24"
passengers = 2

[search.match]
outbound_start = "10:30"
inbound_end = "21:05"

[scraper]
base_url = "https://example.test/booking"
schedule = "0 6 * * *"
headless = false
wait_timeout_seconds = 45
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/var/lib/faretrack/snapshots.db", cfg.Storage.Path)
	assert.Equal(t, "YYZ", cfg.Search.Origin)
	assert.Equal(t, "2026-06-24", cfg.Search.ReturnDate)
	assert.Equal(t, 2, cfg.Search.Passengers)
	assert.Equal(t, "10:30", cfg.Search.Match.OutboundStart)
	assert.Equal(t, "21:05", cfg.Search.Match.InboundEnd)
	assert.Equal(t, "0 6 * * *", cfg.Scraper.Schedule)
	assert.False(t, cfg.Scraper.Headless)
	assert.Equal(t, 45*time.Second, cfg.Scraper.WaitTimeout())
}

func TestLoad_DefaultsSurviveSparseFile(t *testing.T) {
	path := writeConfig(t, `
[search]
origin = "YUL"
destination = "CDG"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "faretrack.db", cfg.Storage.Path)
	assert.Equal(t, 1, cfg.Search.Passengers)
	assert.True(t, cfg.Scraper.Headless)
	assert.Equal(t, 30*time.Second, cfg.Scraper.WaitTimeout())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoad_MalformedTOML(t *testing.T) {
	path := writeConfig(t, `[server`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "zero port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "empty storage path",
			mutate:  func(c *Config) { c.Storage.Path = "" },
			wantErr: "storage path is required",
		},
		{
			name:    "zero passengers",
			mutate:  func(c *Config) { c.Search.Passengers = 0 },
			wantErr: "passenger count must be positive",
		},
		{
			name:    "bad departure date",
			mutate:  func(c *Config) { c.Search.DepartureDate = "06/10/2026" },
			wantErr: "invalid departure_date",
		},
		{
			name:    "bad return date",
			mutate:  func(c *Config) { c.Search.ReturnDate = "tomorrow" },
			wantErr: "invalid return_date",
		},
		{
			name:   "empty dates are allowed",
			mutate: func(c *Config) { c.Search.DepartureDate = ""; c.Search.ReturnDate = "" },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
