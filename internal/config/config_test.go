package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, "https://r.jina.ai", cfg.Relay.BaseURL)
	assert.Empty(t, cfg.Relay.Key)
	assert.False(t, cfg.Demo.Enabled)
	assert.Equal(t, 20, cfg.Demo.ListingsPerPage)
	assert.Equal(t, 2000, cfg.Pipeline.PageDelayMS)
	assert.Equal(t, 1000, cfg.Pipeline.SiteDelayMS)
	assert.Equal(t, 10, cfg.Pipeline.BatchSize)
	assert.Equal(t, 1, cfg.Pipeline.Workers)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LEADSCOUT_LOG_LEVEL", "debug")
	t.Setenv("LEADSCOUT_SERVER_PORT", "9090")
	t.Setenv("LEADSCOUT_PIPELINE_BATCH_SIZE", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Pipeline.BatchSize)
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nonsense"}))
}
