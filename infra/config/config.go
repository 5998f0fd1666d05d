// Package config loads the overlay configuration from a YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// System names accepted in the systems list.
const (
	SystemCooldown = "cooldown"
	SystemBoard    = "board"
	SystemMenu     = "menu"
)

// Config holds application-level configuration.
type Config struct {
	Board    BoardConfig    `yaml:"board"`
	Overlay  OverlayConfig  `yaml:"overlay"`
	Cooldown CooldownConfig `yaml:"cooldown"`
	Systems  []string       `yaml:"systems"`
}

// BoardConfig configures the thread viewer and its feed.
type BoardConfig struct {
	BaseURL         string        `yaml:"base_url"` // e.g. "https://2ch.hk"
	Board           string        `yaml:"board"`
	Tag             string        `yaml:"tag"` // Catalog tag of the followed thread
	PollInterval    time.Duration `yaml:"poll_interval"`
	MaxBackoff      time.Duration `yaml:"max_backoff"`
	RequestInterval time.Duration `yaml:"request_interval"` // Minimum spacing between requests to one host
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	MaxPosts        int           `yaml:"max_posts"` // 0 keeps every post
	UserAgent       string        `yaml:"user_agent"`
}

// OverlayConfig configures drawing.
type OverlayConfig struct {
	FPS        int  `yaml:"fps"`
	CellWidth  int  `yaml:"cell_width"`
	CellHeight int  `yaml:"cell_height"`
	Hidden     bool `yaml:"hidden"` // Start hidden
}

// CooldownConfig configures the skill cooldown timers.
type CooldownConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Keys     []string      `yaml:"keys"` // One key per character slot
	SkillKey string        `yaml:"skill_key"`
	Max      time.Duration `yaml:"max"`
}

// DefaultConfig returns a Config with the stock settings.
func DefaultConfig() Config {
	return Config{
		Board: BoardConfig{
			BaseURL:         "https://2ch.hk",
			Board:           "vg",
			Tag:             "genshin",
			PollInterval:    5 * time.Second,
			MaxBackoff:      time.Minute,
			RequestInterval: time.Second,
			RequestTimeout:  15 * time.Second,
			UserAgent:       "boardhud",
		},
		Overlay: OverlayConfig{
			FPS:        15,
			CellWidth:  6,
			CellHeight: 17,
		},
		Cooldown: CooldownConfig{
			Enabled:  true,
			Keys:     []string{"1", "2", "3", "4"},
			SkillKey: "e",
			Max:      90 * time.Second,
		},
		Systems: []string{SystemCooldown, SystemBoard, SystemMenu},
	}
}

// DefaultPath returns ~/.config/boardhud/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "boardhud", "config.yaml"), nil
}

// Load reads configuration from path, then applies environment overrides.
// A missing file yields the defaults.
//
//	BOARDHUD_BASE_URL       imageboard base URL
//	BOARDHUD_BOARD          board name
//	BOARDHUD_TAG            catalog tag of the followed thread
//	BOARDHUD_POLL_INTERVAL  poll interval, e.g. "5s"
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.Board.BaseURL = strings.TrimRight(cfg.Board.BaseURL, "/")
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("BOARDHUD_BASE_URL"); v != "" {
		c.Board.BaseURL = v
	}
	if v := os.Getenv("BOARDHUD_BOARD"); v != "" {
		c.Board.Board = v
	}
	if v := os.Getenv("BOARDHUD_TAG"); v != "" {
		c.Board.Tag = v
	}
	if v := os.Getenv("BOARDHUD_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BOARDHUD_POLL_INTERVAL: %w", err)
		}
		c.Board.PollInterval = d
	}
	return nil
}

// applyDefaults fills zero values left by a partial file.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Board.MaxBackoff == 0 {
		c.Board.MaxBackoff = defaults.Board.MaxBackoff
	}
	if c.Board.RequestTimeout == 0 {
		c.Board.RequestTimeout = defaults.Board.RequestTimeout
	}
	if c.Board.UserAgent == "" {
		c.Board.UserAgent = defaults.Board.UserAgent
	}
	if c.Overlay.CellWidth == 0 {
		c.Overlay.CellWidth = defaults.Overlay.CellWidth
	}
	if c.Overlay.CellHeight == 0 {
		c.Overlay.CellHeight = defaults.Overlay.CellHeight
	}
	if c.Cooldown.SkillKey == "" {
		c.Cooldown.SkillKey = defaults.Cooldown.SkillKey
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	parsed, err := url.Parse(c.Board.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("board.base_url must be an absolute URL")
	}
	if parsed.Scheme != "https" && !(parsed.Scheme == "http" && isLocalhost(parsed.Hostname())) {
		return fmt.Errorf("board.base_url: only https is allowed")
	}
	if c.Board.Board == "" {
		return fmt.Errorf("board.board cannot be empty")
	}
	if c.Board.Tag == "" {
		return fmt.Errorf("board.tag cannot be empty")
	}
	if c.Board.PollInterval <= 0 {
		return fmt.Errorf("board.poll_interval must be positive")
	}
	if c.Board.MaxBackoff < c.Board.PollInterval {
		return fmt.Errorf("board.max_backoff must be at least board.poll_interval")
	}
	if c.Board.RequestInterval < 0 {
		return fmt.Errorf("board.request_interval cannot be negative")
	}
	if c.Board.MaxPosts < 0 {
		return fmt.Errorf("board.max_posts cannot be negative")
	}
	if c.Overlay.FPS < 1 || c.Overlay.FPS > 60 {
		return fmt.Errorf("overlay.fps must be between 1 and 60")
	}
	if c.Overlay.CellWidth < 1 || c.Overlay.CellHeight < 1 {
		return fmt.Errorf("overlay cell size must be positive")
	}
	if c.Cooldown.Enabled {
		if len(c.Cooldown.Keys) == 0 {
			return fmt.Errorf("cooldown.keys cannot be empty")
		}
		if c.Cooldown.Max <= 0 {
			return fmt.Errorf("cooldown.max must be positive")
		}
		if slices.Contains(c.Cooldown.Keys, c.Cooldown.SkillKey) {
			return fmt.Errorf("cooldown.skill_key %q collides with a slot key", c.Cooldown.SkillKey)
		}
	}
	for _, s := range c.Systems {
		if s != SystemCooldown && s != SystemBoard && s != SystemMenu {
			return fmt.Errorf("unknown system %q", s)
		}
	}
	return nil
}

// Enabled reports whether the named system is listed.
func (c *Config) Enabled(system string) bool {
	return slices.Contains(c.Systems, system)
}

func isLocalhost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
