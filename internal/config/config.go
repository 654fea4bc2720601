// Package config defines the application configuration, loaded from a TOML
// file with environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/jellychn/zentra-sub000/internal/domain"
)

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ExchangeConfig holds the market data endpoints and the tracked symbols.
type ExchangeConfig struct {
	WSURL         string   `toml:"ws_url"`
	RESTURL       string   `toml:"rest_url"`
	Symbols       []string `toml:"symbols"`
	BootstrapBars int      `toml:"bootstrap_bars"`
}

// RedisConfig holds Redis connection parameters for the optional mirrors.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled      bool     `toml:"enabled"`
	Host         string   `toml:"host"`
	Port         int      `toml:"port"`
	ReadTimeout  duration `toml:"read_timeout"`
	WriteTimeout duration `toml:"write_timeout"`
	IdleTimeout  duration `toml:"idle_timeout"`
}

// SettingsConfig holds the initial view selections.
type SettingsConfig struct {
	Timeframe              string `toml:"timeframe"`
	LiquidityWindowMinutes int    `toml:"liquidity_window_minutes"`
	View                   string `toml:"view"`
}

// Config is the root configuration.
type Config struct {
	Exchange ExchangeConfig `toml:"exchange"`
	Redis    RedisConfig    `toml:"redis"`
	Server   ServerConfig   `toml:"server"`
	Settings SettingsConfig `toml:"settings"`
	LogLevel string         `toml:"log_level"`
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validViews = map[string]bool{
	"12h": true,
	"1h":  true,
	"1M":  true,
}

var validLiquidityWindows = map[int]bool{1: true, 5: true, 15: true, 30: true, 60: true}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Exchange: ExchangeConfig{
			WSURL:         "wss://api.phemex.com/ws",
			RESTURL:       "https://api.phemex.com",
			Symbols:       []string{"BTCUSDT"},
			BootstrapBars: 1000,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		Server: ServerConfig{
			Enabled:      true,
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  duration{15 * time.Second},
			WriteTimeout: duration{15 * time.Second},
			IdleTimeout:  duration{60 * time.Second},
		},
		Settings: SettingsConfig{
			Timeframe:              "1m",
			LiquidityWindowMinutes: 15,
			View:                   "12h",
		},
		LogLevel: "info",
	}
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Exchange.WSURL == "" {
		errs = append(errs, "exchange: ws_url must not be empty")
	}
	if c.Exchange.RESTURL == "" {
		errs = append(errs, "exchange: rest_url must not be empty")
	}
	if len(c.Exchange.Symbols) == 0 {
		errs = append(errs, "exchange: at least one symbol must be configured")
	}
	if c.Exchange.BootstrapBars < 0 {
		errs = append(errs, "exchange: bootstrap_bars must not be negative")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty when enabled")
	}

	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server: port must be in 1..65535, got %d", c.Server.Port))
	}

	if !domain.Interval(c.Settings.Timeframe).Valid() {
		errs = append(errs, fmt.Sprintf("settings: unknown timeframe %q", c.Settings.Timeframe))
	}
	if !validLiquidityWindows[c.Settings.LiquidityWindowMinutes] {
		errs = append(errs, fmt.Sprintf("settings: liquidity_window_minutes must be one of 1, 5, 15, 30, 60, got %d", c.Settings.LiquidityWindowMinutes))
	}
	if !validViews[c.Settings.View] {
		errs = append(errs, fmt.Sprintf("settings: unknown view %q (valid: 12h, 1h, 1M)", c.Settings.View))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
