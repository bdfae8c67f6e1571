package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, DefaultMarketURL, cfg.MarketURL)
	assert.Equal(t, RendererBrowser, cfg.Renderer)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 2*time.Second, cfg.SettleDelay)
	assert.Equal(t, 10, cfg.TopN)
	assert.Equal(t, "gpt-4.1-mini", cfg.Model())
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "PSX_RENDERER=http\nPSX_TOP_N=5\nLLM_PROVIDER=deepseek\nDEEPSEEK_API_KEY=sk-test\nPSX_SETTLE_DELAY=500ms\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))
	for _, k := range []string{"PSX_RENDERER", "PSX_TOP_N", "LLM_PROVIDER", "DEEPSEEK_API_KEY", "PSX_SETTLE_DELAY"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, RendererHTTP, cfg.Renderer)
	assert.Equal(t, 5, cfg.TopN)
	assert.Equal(t, 500*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, "deepseek-chat", cfg.Model())
	assert.Equal(t, "sk-test", cfg.APIKey())
	assert.True(t, cfg.ExplanationEnabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("PSX_RENDERER", "carrier-pigeon")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestExplanationDisabledWithoutKey(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.ExplanationEnabled())

	cfg.OpenAIAPIKey = "sk-live"
	assert.True(t, cfg.ExplanationEnabled())
}
