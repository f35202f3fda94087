package platform

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"SLIDESHORTS_CONFIG", "PORT", "STORE_DIR", "FONT_PATH", "FONT_SIZE", "FFMPEG_PATH",
		"REDIS_URL", "PUBLIC_BASE_URL", "FRONTEND_URL", "LOG_LEVEL", "JANITOR_SCHEDULE", "RETENTION",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, filepath.IsAbs(cfg.StoreDir))
	assert.Equal(t, "data", filepath.Base(cfg.StoreDir))
	assert.Equal(t, 64.0, cfg.FontSize)
	assert.Equal(t, time.Duration(0), cfg.RetentionPeriod())
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "slideshorts.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = "9000"
store_dir = "/srv/videos"
font_size = 48.0
retention = "72h"
`), 0o644))

	t.Setenv("SLIDESHORTS_CONFIG", path)
	t.Setenv("PORT", "9100")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "/srv/videos", cfg.StoreDir)
	assert.Equal(t, 48.0, cfg.FontSize)
	assert.Equal(t, 72*time.Hour, cfg.RetentionPeriod())
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("RETENTION", "soon")
	_, err := LoadConfig()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("FONT_SIZE", "big")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestNewLoggerUnknownLevel(t *testing.T) {
	logger := NewLogger("test", "loud")
	assert.True(t, logger.IsInfo())
	assert.False(t, logger.IsDebug())
}
