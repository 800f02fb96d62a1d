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

	assert.Equal(t, 8460, cfg.Port)
	assert.Equal(t, "https://www.blu-ray.com", cfg.BaseURL)
	assert.Equal(t, 22*time.Second, cfg.FetchDelay)
	assert.Equal(t, 14*time.Second, cfg.FetchJitter)
	assert.Equal(t, 4, cfg.BatchSize)
	assert.Zero(t, cfg.CacheMaxAge)
	assert.NotEmpty(t, cfg.UserAgent)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("BASE_URL", "http://127.0.0.1:1234")
	t.Setenv("FETCH_DELAY_SECONDS", "1")
	t.Setenv("CACHE_MAX_AGE_HOURS", "48")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "http://127.0.0.1:1234", cfg.BaseURL)
	assert.Equal(t, time.Second, cfg.FetchDelay)
	assert.Equal(t, 48*time.Hour, cfg.CacheMaxAge)
}

func TestLoad_BatchSizeClamped(t *testing.T) {
	t.Setenv("BATCH_SIZE", "50")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.BatchSize)

	t.Setenv("BATCH_SIZE", "1")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.BatchSize)
}

func TestLoad_InvalidInt(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PORT")
}
