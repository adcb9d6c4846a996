// Package config loads agent configuration from a YAML file with CLI flag
// and environment overrides.
package config

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultDBPath       = "simbot.db"
	defaultWALDir       = "./wal/settlements"
	defaultPollInterval = 15 * time.Minute
	defaultConcurrency  = 4
	defaultKlineLimit   = 100
)

// LLMConfig settings of the OpenAI-compatible decision model.
type LLMConfig struct {
	APIURL string `yaml:"api_url"`
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// AvnuConfig AVNU aggregator endpoints. Empty values mean production.
type AvnuConfig struct {
	BaseURL    string `yaml:"base_url"`
	ImpulseURL string `yaml:"impulse_url"`
}

// ParadexConfig Paradex REST endpoint and optional JWT for account reads.
type ParadexConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// AgentConfig one simulated wallet and its decision loop.
type AgentConfig struct {
	ID              uuid.UUID `yaml:"id"`
	RoomID          uuid.UUID `yaml:"room_id"`
	PollIntervalStr string    `yaml:"poll_interval"`
	TrackedTokens   []string  `yaml:"tracked_tokens"`
	// WatchlistMarkets seeds the room's watchlist at startup.
	WatchlistMarkets []string `yaml:"watchlist_markets"`

	// PollInterval parsed from PollIntervalStr during Load.
	PollInterval time.Duration `yaml:"-"`
}

// Config the full configuration tree.
type Config struct {
	DBPath string `yaml:"db_path"`
	WALDir string `yaml:"wal_dir"`

	LLM     LLMConfig     `yaml:"llm"`
	Avnu    AvnuConfig    `yaml:"avnu"`
	Paradex ParadexConfig `yaml:"paradex"`

	ReferenceSymbols    []string `yaml:"reference_symbols"`
	KlineSource         string   `yaml:"kline_source"`
	KlineInterval       string   `yaml:"kline_interval"`
	KlineLimit          int      `yaml:"kline_limit"`
	ProviderConcurrency int      `yaml:"provider_concurrency"`

	Agents []AgentConfig `yaml:"agents"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse yaml config")
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.parseDurations(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DBPath == "" {
		c.DBPath = defaultDBPath
	}
	if c.WALDir == "" {
		c.WALDir = defaultWALDir
	}
	if c.KlineSource == "" {
		c.KlineSource = "binance"
	}
	if c.KlineInterval == "" {
		c.KlineInterval = "1h"
	}
	if c.KlineLimit <= 0 {
		c.KlineLimit = defaultKlineLimit
	}
	if c.ProviderConcurrency <= 0 {
		c.ProviderConcurrency = defaultConcurrency
	}
	if len(c.ReferenceSymbols) == 0 {
		c.ReferenceSymbols = []string{"BTCUSDT", "ETHUSDT"}
	}

}

func (c *Config) parseDurations() error {
	for i := range c.Agents {
		if c.Agents[i].PollIntervalStr == "" {
			c.Agents[i].PollInterval = defaultPollInterval
			continue
		}
		interval, err := time.ParseDuration(c.Agents[i].PollIntervalStr)
		if err != nil {
			return errors.Wrapf(err, "incorrect 'poll_interval' for agents[%d]", i)
		}
		if interval <= 0 {
			return errors.Errorf("agents[%d].poll_interval must be positive", i)
		}
		c.Agents[i].PollInterval = interval
	}
	return nil
}

// applyEnv lets secrets come from the environment instead of the file.
func (c *Config) applyEnv() {
	if key := os.Getenv("SIMBOT_LLM_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if token := os.Getenv("SIMBOT_PARADEX_TOKEN"); token != "" {
		c.Paradex.Token = token
	}
}

func (c *Config) validate() error {
	if c.LLM.APIURL == "" {
		return errors.New("llm.api_url is required")
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model is required")
	}
	if c.KlineSource != "binance" && c.KlineSource != "bybit" {
		return errors.Errorf("kline_source must be binance or bybit, got %q", c.KlineSource)
	}
	if len(c.Agents) == 0 {
		return errors.New("at least one agent must be configured")
	}

	seen := make(map[uuid.UUID]struct{}, len(c.Agents))
	for i, agent := range c.Agents {
		if agent.ID == uuid.Nil {
			return errors.Errorf("agents[%d].id is required", i)
		}
		if _, dup := seen[agent.ID]; dup {
			return errors.Errorf("agents[%d].id %s is duplicated", i, agent.ID)
		}
		seen[agent.ID] = struct{}{}
	}

	return nil
}
