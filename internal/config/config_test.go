package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("ENABLE_DB", "true")
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadUsesDefaults(t *testing.T) {
	t.Setenv("ENABLE_DB", "false")
	t.Setenv("DATA_DIR", "testdata")
	t.Setenv("MODEL_PATH", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ModelFormatJSON, cfg.Model.Format)
	assert.Equal(t, filepath.Join("testdata", "model.json"), cfg.Model.Path)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.True(t, cfg.Database.Migrate)
	assert.True(t, cfg.Database.Seed)
}

func TestLoadRejectsUnknownModelFormat(t *testing.T) {
	t.Setenv("MODEL_FORMAT", "pickle")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MODEL_FORMAT")
}

func TestLoadParsesRateLimit(t *testing.T) {
	t.Setenv("MODEL_FORMAT", "")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "7")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 7, cfg.RateLimit.Burst)

	t.Setenv("RATE_LIMIT_BURST", "lots")
	_, err = Load()
	require.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a, ,http://b "))
	assert.Empty(t, splitList(""))
}
