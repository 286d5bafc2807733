package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 0.2, cfg.Pipeline.SelectRatio)
	assert.Equal(t, 50, cfg.Pipeline.HardCap)
	assert.Equal(t, 1, cfg.Pipeline.VerifyWorkers)
	assert.False(t, cfg.Classify.Enabled)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BASAROMETER_PIPELINE_HARD_CAP", "7")
	t.Setenv("BASAROMETER_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Pipeline.HardCap)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestDurationHelpers(t *testing.T) {
	v := VerifyConfig{SearchTimeoutSecs: 30}
	assert.Equal(t, 30*time.Second, v.SearchTimeout())

	b := BulkConfig{TimeoutSecs: 60}
	assert.Equal(t, time.Minute, b.Timeout())
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}

func TestInitLogger_Console(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	assert.NoError(t, err)
}
