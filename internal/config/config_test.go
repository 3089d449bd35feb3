package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dijiclick/pepebot/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const minimalConfig = `
analysis:
  api_key: test-key
telegram:
  enabled: false
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "1000PEPEUSDT", cfg.Symbol)
	assert.Equal(t, 60, cfg.Exchange.WindowSize)
	assert.Equal(t, "1m", cfg.Exchange.Interval)
	assert.Equal(t, 25.0, cfg.Engine.ADXThreshold)
	assert.Equal(t, 60, cfg.Engine.MinConfidence)
	assert.Equal(t, 80, cfg.Engine.HighConfidence)
	assert.Equal(t, 500, cfg.Governor.MaxCallsPerDay)
	assert.Equal(t, 100, cfg.Governor.MaxEscalations)
	assert.Equal(t, 1.0, cfg.Governor.MaxSpendUSD)
	assert.Equal(t, 60*time.Second, cfg.Cooldown())
	assert.Equal(t, "grok-4", cfg.Analysis.Model)
	assert.Equal(t, 30*time.Second, cfg.AnalysisTimeout())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
symbol: DOGEUSDT
exchange:
  window_size: 120
engine:
  min_confidence: 55
  high_confidence: 75
analysis:
  api_key: test-key
telegram:
  enabled: false
`))
	require.NoError(t, err)

	assert.Equal(t, "DOGEUSDT", cfg.Symbol)
	assert.Equal(t, 120, cfg.Exchange.WindowSize)
	assert.Equal(t, 55, cfg.Engine.MinConfidence)
	assert.Equal(t, 75, cfg.Engine.HighConfidence)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	_, err := config.Load(writeConfig(t, `
telegram:
  enabled: false
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APIKey")
}

func TestLoad_WindowTooSmall(t *testing.T) {
	_, err := config.Load(writeConfig(t, `
exchange:
  window_size: 5
analysis:
  api_key: test-key
telegram:
  enabled: false
`))
	require.Error(t, err)
}

func TestLoad_ConfidenceBandsInverted(t *testing.T) {
	_, err := config.Load(writeConfig(t, `
engine:
  min_confidence: 80
  high_confidence: 60
analysis:
  api_key: test-key
telegram:
  enabled: false
`))
	require.Error(t, err)
}

func TestLoad_TelegramEnabledNeedsCredentials(t *testing.T) {
	_, err := config.Load(writeConfig(t, `
analysis:
  api_key: test-key
telegram:
  enabled: true
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram")
}

func TestLoadWithEnv_SecretOverrides(t *testing.T) {
	t.Setenv("GROK_API_KEY", "env-key")
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")
	t.Setenv("SYMBOL", "shibusdt")

	cfg, err := config.LoadWithEnv(writeConfig(t, `
telegram:
  enabled: true
`))
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Analysis.APIKey)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "12345", cfg.Telegram.ChatID)
	assert.Equal(t, "SHIBUSDT", cfg.Symbol)
}
