package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// TelegramConfig configures the bot connection.
// The token comes from the environment only and is never persisted.
type TelegramConfig struct {
	Token   string `json:"-" env:"RELAYGRAM_TELEGRAM_TOKEN"`
	OwnerID int64  `json:"owner_id" env:"RELAYGRAM_OWNER_ID"`
}

// RelayConfig tunes the forwarding engine. Zero values fall back to the
// engine defaults.
type RelayConfig struct {
	StatePath         string  `json:"state_path" env:"RELAYGRAM_STATE_PATH"`
	DebounceWindowSec float64 `json:"debounce_window_sec" env:"RELAYGRAM_DEBOUNCE_WINDOW_SEC"`
	MaxGroupSize      int     `json:"max_group_size" env:"RELAYGRAM_MAX_GROUP_SIZE"`
	MaxAttempts       int     `json:"max_attempts" env:"RELAYGRAM_MAX_ATTEMPTS"`
	BaseDelaySec      float64 `json:"base_delay_sec" env:"RELAYGRAM_BASE_DELAY_SEC"`
	SendRatePerSec    float64 `json:"send_rate_per_sec" env:"RELAYGRAM_SEND_RATE_PER_SEC"`
	SendBurst         int     `json:"send_burst" env:"RELAYGRAM_SEND_BURST"`
}

// Config is the root configuration for the relay bot.
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Relay    RelayConfig    `json:"relay"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Relay: RelayConfig{
			StatePath:      "relay.json",
			SendRatePerSec: 1,
			SendBurst:      3,
		},
	}
}

// Load reads config from a JSON file, then overlays env vars. Env vars
// take precedence over file values. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}
	return cfg, nil
}

// DebounceWindow returns the configured debounce window, or zero when
// unset so the engine default applies.
func (c RelayConfig) DebounceWindow() time.Duration {
	return time.Duration(c.DebounceWindowSec * float64(time.Second))
}

// BaseDelay returns the configured retry base delay, or zero when unset.
func (c RelayConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelaySec * float64(time.Second))
}
