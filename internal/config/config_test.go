package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty ws url", func(c *Config) { c.Exchange.WSURL = "" }},
		{"no symbols", func(c *Config) { c.Exchange.Symbols = nil }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"bad port", func(c *Config) { c.Server.Port = 99999 }},
		{"bad timeframe", func(c *Config) { c.Settings.Timeframe = "7m" }},
		{"bad window", func(c *Config) { c.Settings.LiquidityWindowMinutes = 7 }},
		{"bad view", func(c *Config) { c.Settings.View = "6h" }},
		{"redis enabled without addr", func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("want validation error")
			}
		})
	}
}

func TestLoadTOMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	toml := `
log_level = "debug"

[exchange]
symbols = ["ETHUSDT", "BTCUSDT"]

[server]
read_timeout = "5s"
`
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ZENTRA_SERVER_PORT", "9090")
	t.Setenv("ZENTRA_EXCHANGE_SYMBOLS", "SOLUSDT")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
	if cfg.Server.ReadTimeout.Duration != 5*time.Second {
		t.Fatalf("read timeout = %v", cfg.Server.ReadTimeout.Duration)
	}
	// Environment wins over the file.
	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if len(cfg.Exchange.Symbols) != 1 || cfg.Exchange.Symbols[0] != "SOLUSDT" {
		t.Fatalf("symbols = %v", cfg.Exchange.Symbols)
	}
	// Untouched fields keep their defaults.
	if cfg.Exchange.WSURL != Defaults().Exchange.WSURL {
		t.Fatalf("ws url = %q", cfg.Exchange.WSURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}
