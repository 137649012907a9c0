package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20*time.Second, cfg.NavTimeout())
	assert.Equal(t, 45*time.Second, cfg.AttemptDeadline())
	assert.Equal(t, 120*time.Second, cfg.ItemTimeout())
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 2500*time.Millisecond, cfg.SettleDelay())
	assert.Equal(t, "screenshots", cfg.OutputDir)
	assert.Equal(t, 1920, cfg.ViewportWidth)
	assert.Equal(t, 1080, cfg.ViewportHeight)
}

func TestLoadDeadlineNesting(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.LessOrEqual(t, cfg.NavTimeout(), cfg.AttemptDeadline())
	assert.LessOrEqual(t, cfg.AttemptDeadline(), cfg.ItemTimeout())
}

func TestLoadRejectsInvertedDeadlines(t *testing.T) {
	t.Setenv("NAV_TIMEOUT", "90")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsAttemptOverItem(t *testing.T) {
	t.Setenv("ATTEMPT_TIMEOUT", "300")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MAX_ATTEMPTS", "2")
	t.Setenv("OUTPUT_DIR", "/tmp/captures")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxAttempts)
	assert.Equal(t, "/tmp/captures", cfg.OutputDir)
}
