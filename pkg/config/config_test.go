package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: test
upstream:
  base_url: http://api.example.com
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Upstream.ReconnectDelay)
	assert.Equal(t, 3, cfg.Upstream.MaxWSFailures)
	assert.Equal(t, 50, cfg.Feed.Capacity)
	assert.Equal(t, 15*time.Second, cfg.Feed.RefreshInterval)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadDerivesStreamURLs(t *testing.T) {
	path := writeConfig(t, `
environment: test
upstream:
  base_url: https://api.example.com
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "wss://api.example.com/events", cfg.Upstream.WebSocketURL)
	assert.Equal(t, "https://api.example.com/events/sse", cfg.Upstream.SSEURL)
}

func TestLoadRejectsMissingUpstream(t *testing.T) {
	path := writeConfig(t, `
environment: test
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
environment: test
upstream:
  base_url: http://api.example.com
`)
	t.Setenv("DARKFLOW_API_URL", "https://live.example.com")
	t.Setenv("DARKFLOW_API_KEY", "sekrit")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")

	cfg, err := LoadWithEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "https://live.example.com", cfg.Upstream.BaseURL)
	assert.Equal(t, "wss://live.example.com/events", cfg.Upstream.WebSocketURL)
	assert.Equal(t, "https://live.example.com/events/sse", cfg.Upstream.SSEURL)
	assert.Equal(t, "sekrit", cfg.Upstream.APIKey)
	assert.Equal(t, int64(12345), cfg.Alerts.TelegramChatID)
	assert.True(t, cfg.Cache.Redis.Enabled)
	assert.Equal(t, "redis.internal:6379", cfg.Cache.Redis.Addr)
}
