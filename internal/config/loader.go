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
// built-in defaults, applies ZENTRA_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known ZENTRA_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators adjust deployments without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Exchange ──
	setStr(&cfg.Exchange.WSURL, "ZENTRA_EXCHANGE_WS_URL")
	setStr(&cfg.Exchange.RESTURL, "ZENTRA_EXCHANGE_REST_URL")
	setStringSlice(&cfg.Exchange.Symbols, "ZENTRA_EXCHANGE_SYMBOLS")
	setInt(&cfg.Exchange.BootstrapBars, "ZENTRA_EXCHANGE_BOOTSTRAP_BARS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "ZENTRA_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "ZENTRA_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "ZENTRA_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ZENTRA_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "ZENTRA_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "ZENTRA_REDIS_MAX_RETRIES")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "ZENTRA_SERVER_ENABLED")
	setStr(&cfg.Server.Host, "ZENTRA_SERVER_HOST")
	setInt(&cfg.Server.Port, "ZENTRA_SERVER_PORT")
	setDuration(&cfg.Server.ReadTimeout, "ZENTRA_SERVER_READ_TIMEOUT")
	setDuration(&cfg.Server.WriteTimeout, "ZENTRA_SERVER_WRITE_TIMEOUT")
	setDuration(&cfg.Server.IdleTimeout, "ZENTRA_SERVER_IDLE_TIMEOUT")

	// ── Settings ──
	setStr(&cfg.Settings.Timeframe, "ZENTRA_SETTINGS_TIMEFRAME")
	setInt(&cfg.Settings.LiquidityWindowMinutes, "ZENTRA_SETTINGS_LIQUIDITY_WINDOW_MINUTES")
	setStr(&cfg.Settings.View, "ZENTRA_SETTINGS_VIEW")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "ZENTRA_LOG_LEVEL")
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

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
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
			if p = strings.TrimSpace(p); p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
