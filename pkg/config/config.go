package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"darkflow/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Upstream struct {
		BaseURL        string        `yaml:"base_url"`
		WebSocketURL   string        `yaml:"websocket_url"`
		SSEURL         string        `yaml:"sse_url"`
		APIKey         string        `yaml:"api_key"`
		Transport      string        `yaml:"transport"`
		Timeout        time.Duration `yaml:"timeout"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
		MaxWSFailures  int           `yaml:"max_ws_failures"`
	} `yaml:"upstream"`
	Feed struct {
		Capacity        int           `yaml:"capacity"`
		RefreshInterval time.Duration `yaml:"refresh_interval"`
		MaxEventsPerSec int           `yaml:"max_events_per_sec"`
		BufferSize      int           `yaml:"buffer_size"`
	} `yaml:"feed"`
	Cache struct {
		ViewTTL struct {
			FlowState    time.Duration `yaml:"flow_state"`
			MarketPrices time.Duration `yaml:"market_prices"`
			Fingerprint  time.Duration `yaml:"fingerprint"`
			Alerts       time.Duration `yaml:"alerts"`
			Wallets      time.Duration `yaml:"wallets"`
		} `yaml:"view_ttl"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Alerts struct {
		TelegramToken  string        `yaml:"telegram_token"`
		TelegramChatID int64         `yaml:"telegram_chat_id"`
		MinNotionalUSD float64       `yaml:"min_notional_usd"`
		Cooldown       time.Duration `yaml:"cooldown"`
	} `yaml:"alerts"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DARKFLOW_API_URL"); v != "" {
		c.Upstream.BaseURL = v
		// Stream endpoints follow the base URL unless overridden explicitly.
		if os.Getenv("DARKFLOW_WS_URL") == "" {
			c.Upstream.WebSocketURL = deriveWSURL(v) + "/events"
		}
		c.Upstream.SSEURL = v + "/events/sse"
	}
	if v := os.Getenv("DARKFLOW_WS_URL"); v != "" {
		c.Upstream.WebSocketURL = v
	}
	if v := os.Getenv("DARKFLOW_API_KEY"); v != "" {
		c.Upstream.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Alerts.TelegramToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Alerts.TelegramChatID = id
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Enabled = true
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("DARKFLOW_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("DARKFLOW_MIN_NOTIONAL_USD"); v != "" {
		c.Alerts.MinNotionalUSD = util.ParseFloatDefault(v, c.Alerts.MinNotionalUSD)
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = 10 * time.Second
	}
	if c.Upstream.ReconnectDelay == 0 {
		c.Upstream.ReconnectDelay = 3 * time.Second
	}
	if c.Upstream.PingInterval == 0 {
		c.Upstream.PingInterval = 30 * time.Second
	}
	if c.Upstream.MaxWSFailures == 0 {
		c.Upstream.MaxWSFailures = 3
	}
	if c.Feed.Capacity == 0 {
		c.Feed.Capacity = 50
	}
	if c.Feed.RefreshInterval == 0 {
		c.Feed.RefreshInterval = 15 * time.Second
	}
	if c.Feed.BufferSize == 0 {
		c.Feed.BufferSize = 1000
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is required")
	}
	if c.Upstream.WebSocketURL == "" {
		c.Upstream.WebSocketURL = deriveWSURL(c.Upstream.BaseURL) + "/events"
	}
	if c.Upstream.SSEURL == "" {
		c.Upstream.SSEURL = c.Upstream.BaseURL + "/events/sse"
	}
	if c.Upstream.MaxWSFailures < 1 {
		return fmt.Errorf("upstream.max_ws_failures must be >= 1")
	}
	if c.Feed.Capacity < 1 {
		return fmt.Errorf("feed.capacity must be >= 1")
	}
	return nil
}

func deriveWSURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	default:
		return base
	}
}
